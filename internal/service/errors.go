package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/workflow"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// translate maps workflow and store errors onto API errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, workflow.ErrStaffOnly):
		return apperrors.NewForbidden("you do not have permission to modify this ticket")
	case errors.Is(err, workflow.ErrNotOwner):
		return apperrors.NewForbidden("you do not have permission to access this ticket")
	case errors.Is(err, workflow.ErrInternalNoteByCustomer):
		return apperrors.NewForbidden("you do not have permission to post internal notes")
	case errors.Is(err, workflow.ErrUnknownStatus):
		return apperrors.NewValidationError("invalid status", map[string]any{"allowed": []domain.TicketStatus{
			domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusClosed,
		}})
	case errors.Is(err, workflow.ErrUnknownPriority):
		return apperrors.NewValidationError("invalid priority", map[string]any{"allowed": []domain.TicketPriority{
			domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh, domain.TicketPriorityCritical,
		}})
	case errors.Is(err, workflow.ErrRatingOutOfRange):
		return apperrors.NewValidationError(
			fmt.Sprintf("rating must be between %d and %d", workflow.MinRating, workflow.MaxRating), nil)
	case errors.Is(err, workflow.ErrEmptyMessage):
		return apperrors.NewValidationError("message content or at least one attachment is required", nil)
	case errors.Is(err, workflow.ErrInvalidTransition):
		return apperrors.NewInvalidState("status transition not allowed", nil)
	case errors.Is(err, workflow.ErrTicketClosed):
		return apperrors.NewInvalidState("ticket is closed", nil)
	case errors.Is(err, workflow.ErrTicketNotClosed):
		return apperrors.NewInvalidState("ticket must be closed before it can be rated", nil)
	case errors.Is(err, workflow.ErrAlreadyRated):
		return apperrors.NewAlreadyRated("ticket has already been rated")
	case errors.Is(err, repository.ErrStaleTicket):
		return apperrors.NewConflict("ticket was modified by another request, reload and try again", nil)
	case errors.Is(err, repository.ErrDuplicateTicketKey):
		return apperrors.NewConflict("could not allocate a ticket key, try again", nil)
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("ticket", nil)
	}
	return apperrors.MapError(err)
}

// resultCode labels an operation outcome for metrics.
func resultCode(err error) string {
	if err == nil {
		return "ok"
	}
	return apperrors.ToDomainError(err).Code
}

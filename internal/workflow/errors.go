package workflow

import "errors"

// Decision errors. They carry no transport concerns; the service layer translates
// them into API errors.
var (
	ErrStaffOnly              = errors.New("workflow: staff role required")
	ErrNotOwner               = errors.New("workflow: actor does not own the ticket")
	ErrUnknownStatus          = errors.New("workflow: unknown status")
	ErrUnknownPriority        = errors.New("workflow: unknown priority")
	ErrInvalidTransition      = errors.New("workflow: status transition not allowed")
	ErrEmptyMessage           = errors.New("workflow: message needs content or an attachment")
	ErrInternalNoteByCustomer = errors.New("workflow: only staff can post internal notes")
	ErrTicketClosed           = errors.New("workflow: ticket is closed")
	ErrTicketNotClosed        = errors.New("workflow: ticket is not closed")
	ErrAlreadyRated           = errors.New("workflow: ticket already rated")
	ErrRatingOutOfRange       = errors.New("workflow: rating out of range")
)

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// FAQService serves the public FAQ.
type FAQService struct {
	faqs repository.FAQRepository
}

// NewFAQService constructs the service.
func NewFAQService(faqs repository.FAQRepository) *FAQService {
	return &FAQService{faqs: faqs}
}

// List returns active FAQs, most helpful first.
func (s *FAQService) List(ctx context.Context, category, search string) ([]domain.FAQ, error) {
	filter := repository.FAQFilter{}
	if c := strings.TrimSpace(category); c != "" {
		filter.Category = &c
	}
	if q := strings.TrimSpace(search); q != "" {
		filter.SearchTerm = &q
	}
	faqs, err := s.faqs.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return faqs, nil
}

// Vote counts one helpful or not-helpful vote.
func (s *FAQService) Vote(ctx context.Context, id string, helpful bool) (*domain.FAQ, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("faq", map[string]any{"id": id})
	}
	faq, err := s.faqs.Vote(ctx, id, helpful)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("faq", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return faq, nil
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// FAQHandler serves the public FAQ.
type FAQHandler struct {
	faqs *service.FAQService
}

func NewFAQHandler(faqs *service.FAQService) *FAQHandler {
	return &FAQHandler{faqs: faqs}
}

// List GET /faqs?category&search.
func (h *FAQHandler) List(c *fiber.Ctx) error {
	faqs, err := h.faqs.List(c.UserContext(), c.Query("category"), c.Query("search"))
	if err != nil {
		return err
	}
	items := make([]dto.FAQResponse, 0, len(faqs))
	for i := range faqs {
		items = append(items, faqResponse(&faqs[i]))
	}
	return respond(c, http.StatusOK, items)
}

// Vote POST /faqs/:id/vote.
func (h *FAQHandler) Vote(c *fiber.Ctx) error {
	var req dto.VoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Helpful == nil {
		return apperrors.NewValidationError("helpful is required", nil)
	}
	faq, err := h.faqs.Vote(c.UserContext(), c.Params("id"), *req.Helpful)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, faqResponse(faq))
}

func faqResponse(f *domain.FAQ) dto.FAQResponse {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.FAQResponse{
		ID:              f.ID,
		Question:        f.Question,
		Answer:          f.Answer,
		Category:        f.Category,
		Tags:            tags,
		HelpfulCount:    f.HelpfulCount,
		NotHelpfulCount: f.NotHelpfulCount,
	}
}

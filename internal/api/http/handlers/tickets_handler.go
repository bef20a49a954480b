package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

const attachmentsField = "attachments"

// TicketsHandler serves the ticket endpoints shared by customers and staff. Role
// gating happens in the router and again in the service.
type TicketsHandler struct {
	tickets            *service.TicketService
	maxAttachmentBytes int64
}

// NewTicketsHandler constructs handler. Files above maxAttachmentBytes are rejected
// before they are read.
func NewTicketsHandler(tickets *service.TicketService, maxAttachmentBytes int64) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, maxAttachmentBytes: maxAttachmentBytes}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	files, err := h.readAttachments(c)
	if err != nil {
		return err
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), actor, service.CreateTicketInput{
		Subject:     req.Subject,
		Category:    req.Category,
		Content:     req.Content,
		Attachments: files,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, ticketResponse(ticket))
}

// ListTickets GET /tickets, the caller's own tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	page, err := h.tickets.ListOwnTickets(c.UserContext(), actor, parseTicketQuery(c))
	if err != nil {
		return err
	}
	return respondTicketPage(c, page)
}

// GetTicket GET /tickets/:ticketId.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	view, err := h.tickets.GetTicketForViewer(c.UserContext(), actor, c.Params("ticketId"))
	if err != nil {
		return err
	}
	resp := dto.TicketDetailResponse{TicketResponse: ticketResponse(view.Ticket)}
	if view.CustomerTickets != nil {
		resp.CustomerTickets = ticketList(view.CustomerTickets)
	}
	return respond(c, http.StatusOK, resp)
}

// PostMessage POST /tickets/:ticketId/messages.
func (h *TicketsHandler) PostMessage(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.PostMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	files, err := h.readAttachments(c)
	if err != nil {
		return err
	}

	ticket, err := h.tickets.PostMessage(c.UserContext(), actor, c.Params("ticketId"), service.PostMessageInput{
		Content:     req.Content,
		IsInternal:  req.IsInternal,
		Attachments: files,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, ticketResponse(ticket))
}

// UpdateStatus PATCH /tickets/:ticketId/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	ticket, err := h.tickets.ChangeStatus(c.UserContext(), actor, c.Params("ticketId"), req.Status)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticketResponse(ticket))
}

// UpdatePriority PATCH /tickets/:ticketId/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePriorityRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	ticket, err := h.tickets.ChangePriority(c.UserContext(), actor, c.Params("ticketId"), req.Priority)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticketResponse(ticket))
}

// Assign PATCH /tickets/:ticketId.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Assign(c.UserContext(), actor, c.Params("ticketId"), req.AssignedUserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticketResponse(ticket))
}

// AssignToSelf POST /tickets/:ticketId/assign-self.
func (h *TicketsHandler) AssignToSelf(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.AssignToSelf(c.UserContext(), actor, c.Params("ticketId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticketResponse(ticket))
}

// Rate POST /tickets/:ticketId/rate.
func (h *TicketsHandler) Rate(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.RateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Rate(c.UserContext(), actor, c.Params("ticketId"), req.Rating, req.Feedback)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticketResponse(ticket))
}

// readAttachments loads multipart files. JSON requests carry none.
func (h *TicketsHandler) readAttachments(c *fiber.Ctx) ([]service.AttachmentUpload, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.NewValidationError("invalid multipart payload", nil)
	}
	headers := form.File[attachmentsField]
	uploads := make([]service.AttachmentUpload, 0, len(headers))
	for _, fh := range headers {
		if h.maxAttachmentBytes > 0 && fh.Size > h.maxAttachmentBytes {
			return nil, apperrors.NewValidationError("attachment is too large", map[string]any{
				"file":     fh.Filename,
				"maxBytes": h.maxAttachmentBytes,
			})
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Errorf("open upload %s: %w", fh.Filename, err))
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Errorf("read upload %s: %w", fh.Filename, err))
		}
		uploads = append(uploads, service.AttachmentUpload{
			OriginalName: fh.Filename,
			ContentType:  fh.Header.Get(fiber.HeaderContentType),
			Data:         data,
		})
	}
	return uploads, nil
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	return service.TicketListFilter{
		Statuses:   parseList[domain.TicketStatus](c.Query("status")),
		Categories: parseList[domain.TicketCategory](c.Query("category")),
		Priorities: parseList[domain.TicketPriority](c.Query("priority")),
		AssignedTo: optional(c.Query("assignedTo")),
		Search:     optional(c.Query("search")),
		Page:       parseInt(c.Query("page"), 1),
		Limit:      parseInt(c.Query("limit"), 0),
	}
}

func respondTicketPage(c *fiber.Ctx, page *service.TicketPage) error {
	return respondPage(c, ticketList(page.Tickets), dto.Pagination{
		Page:  page.Page,
		Limit: page.Limit,
		Total: page.Total,
		Pages: page.Pages(),
	})
}

func ticketList(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}

func ticketResponse(t *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:         t.ID,
		TicketID:   t.TicketID,
		UserID:     t.UserID,
		Subject:    t.Subject,
		Category:   t.Category,
		Status:     t.Status,
		Priority:   t.Priority,
		AssignedTo: t.AssignedTo,
		Rating:     t.Rating,
		Feedback:   t.Feedback,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
		ResolvedAt: t.ResolvedAt,
	}
	if len(t.Messages) > 0 {
		resp.Messages = make([]dto.MessageResponse, 0, len(t.Messages))
		for _, m := range t.Messages {
			resp.Messages = append(resp.Messages, messageResponse(m))
		}
	}
	return resp
}

func messageResponse(m domain.TicketMessage) dto.MessageResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			Filename:     a.Filename,
			OriginalName: a.OriginalName,
			Mimetype:     a.Mimetype,
			Size:         a.Size,
			URL:          a.URL,
		})
	}
	return dto.MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		SenderType:  m.SenderType,
		IsInternal:  m.IsInternal,
		Content:     m.Content,
		Attachments: attachments,
		CreatedAt:   m.CreatedAt,
	}
}

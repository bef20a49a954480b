package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

// AdminHandler serves the staff console: all tickets, audit history, the staff
// directory and customer history.
type AdminHandler struct {
	tickets *service.TicketService
	staff   *service.StaffService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(tickets *service.TicketService, staff *service.StaffService) *AdminHandler {
	return &AdminHandler{tickets: tickets, staff: staff}
}

// ListTickets GET /admin/tickets.
func (h *AdminHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	page, err := h.tickets.ListAllTickets(c.UserContext(), actor, parseTicketQuery(c))
	if err != nil {
		return err
	}
	return respondTicketPage(c, page)
}

// TicketHistory GET /admin/tickets/:ticketId/history.
func (h *AdminHandler) TicketHistory(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	entries, err := h.tickets.ListHistory(c.UserContext(), actor, c.Params("ticketId"))
	if err != nil {
		return err
	}
	items := make([]dto.HistoryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.HistoryResponse{
			ID:          e.ID,
			ChangeType:  e.ChangeType,
			FromUser:    e.FromUser,
			ToUser:      e.ToUser,
			FromValue:   e.FromValue,
			ToValue:     e.ToValue,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		})
	}
	return respond(c, http.StatusOK, items)
}

// UserTickets GET /admin/users/:userId/tickets.
func (h *AdminHandler) UserTickets(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	page, err := h.tickets.ListCustomerTickets(c.UserContext(), actor, c.Params("userId"), parseTicketQuery(c))
	if err != nil {
		return err
	}
	return respondTicketPage(c, page)
}

// ListStaff GET /admin/staff?role&includeInactive&limit&offset.
func (h *AdminHandler) ListStaff(c *fiber.Ctx) error {
	member, err := staffFrom(c)
	if err != nil {
		return err
	}
	filters := service.StaffListFilters{
		IncludeInactive: c.QueryBool("includeInactive", false),
		Limit:           parseInt(c.Query("limit"), 50),
		Offset:          c.QueryInt("offset", 0),
	}
	if role := c.Query("role"); role != "" {
		r := domain.StaffRole(role)
		filters.Role = &r
	}
	members, err := h.staff.ListStaffMembers(c.UserContext(), member, filters)
	if err != nil {
		return err
	}
	items := make([]dto.StaffResponse, 0, len(members))
	for i := range members {
		items = append(items, staffResponse(&members[i]))
	}
	return respond(c, http.StatusOK, items)
}

// CreateStaff POST /admin/staff.
func (h *AdminHandler) CreateStaff(c *fiber.Ctx) error {
	member, err := staffFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateStaffRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	created, err := h.staff.CreateStaffMember(c.UserContext(), member, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, staffResponse(created))
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminHandler
	FAQs           *handlers.FAQHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Auth.RegisterUser)
	authGroup.Post("/users/login", cfg.Auth.LoginUser)
	authGroup.Post("/staff/login", cfg.Auth.LoginStaff)

	faqs := app.Group("/faqs")
	faqs.Get("", cfg.FAQs.List)
	faqs.Post("/:id/vote", cfg.FAQs.Vote)

	anyStaff := auth.RequireStaffRole()

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", auth.RequireUser(), cfg.Tickets.CreateTicket)
	tickets.Get("", auth.RequireUser(), cfg.Tickets.ListTickets)
	tickets.Get("/:ticketId", cfg.Tickets.GetTicket)
	tickets.Post("/:ticketId/messages", cfg.Tickets.PostMessage)
	tickets.Patch("/:ticketId/status", anyStaff, cfg.Tickets.UpdateStatus)
	tickets.Patch("/:ticketId/priority", anyStaff, cfg.Tickets.UpdatePriority)
	tickets.Patch("/:ticketId", anyStaff, cfg.Tickets.Assign)
	tickets.Post("/:ticketId/assign-self", anyStaff, cfg.Tickets.AssignToSelf)
	tickets.Post("/:ticketId/rate", auth.RequireUser(), cfg.Tickets.Rate)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, anyStaff)
	admin.Get("/tickets", cfg.Admin.ListTickets)
	admin.Get("/tickets/:ticketId/history", cfg.Admin.TicketHistory)
	admin.Get("/users/:userId/tickets", cfg.Admin.UserTickets)
	admin.Get("/staff", cfg.Admin.ListStaff)
	admin.Post("/staff", auth.RequireStaffRole(domain.StaffRoleAdmin), cfg.Admin.CreateStaff)
}

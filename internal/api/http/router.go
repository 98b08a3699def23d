package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/noc-intake/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Intake  *handlers.IntakeHandler
	Tickets *handlers.TicketsHandler
	Inbox   *handlers.InboxHandler
	Admin   *handlers.AdminHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	intake := app.Group("/intake")
	intake.Post("/evaluate", cfg.Intake.Evaluate)
	intake.Post("/tickets", cfg.Intake.CreateTicket)

	tickets := app.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)

	inbox := app.Group("/inbox")
	inbox.Get("/", cfg.Inbox.ListEmails)
	inbox.Post("/signoff/:id", cfg.Inbox.SubmitSignOff)
	inbox.Post("/accept/:emailId", cfg.Inbox.AcceptSignOff)

	admin := app.Group("/admin")
	admin.Post("/datasets/:kind", cfg.Admin.LoadDataset)
	admin.Post("/reset", cfg.Admin.Reset)
	admin.Post("/chat", cfg.Admin.Chat)
	admin.Get("/reports", cfg.Admin.Reports)
}

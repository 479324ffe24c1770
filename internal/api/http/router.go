package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compliance-tracker/internal/api/http/handlers"
	"github.com/spec-kit/compliance-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Technicians    *handlers.TechniciansHandler
	Groups         *handlers.GroupsHandler
	Controls       *handlers.ControlsHandler
	Tasks          *handlers.TasksHandler
	Tickets        *handlers.TicketsHandler
	Extract        *handlers.ExtractHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Reads stay open; mutating routes sit
// behind the bearer-token middleware, which is a no-op when auth is disabled.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/auth/token", cfg.Auth.IssueToken)

	api.Get("/technicians", cfg.Technicians.List)
	api.Get("/technicians/:id", cfg.Technicians.Get)
	api.Get("/groups", cfg.Groups.List)
	api.Get("/groups/:id", cfg.Groups.Get)
	api.Get("/controls", cfg.Controls.List)
	api.Get("/controls/:id", cfg.Controls.Get)
	api.Get("/tasks", cfg.Tasks.List)
	api.Get("/tasks/:id", cfg.Tasks.Get)
	api.Get("/extract/jobs/:id", cfg.Extract.GetJob)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/technicians", cfg.Technicians.Create)
	protected.Put("/technicians/:id", cfg.Technicians.Update)
	protected.Delete("/technicians/:id", cfg.Technicians.Delete)

	protected.Post("/groups", cfg.Groups.Create)
	protected.Put("/groups/:id", cfg.Groups.Update)
	protected.Delete("/groups/:id", cfg.Groups.Delete)

	protected.Post("/controls", cfg.Controls.Create)
	protected.Put("/controls/:id", cfg.Controls.Update)
	protected.Delete("/controls/:id", cfg.Controls.Delete)

	protected.Post("/tasks", cfg.Tasks.Create)
	protected.Post("/tasks/reorder", cfg.Tasks.Reorder)
	protected.Put("/tasks/:id", cfg.Tasks.Update)
	protected.Delete("/tasks/:id", cfg.Tasks.Delete)

	protected.Post("/tickets", cfg.Tickets.Create)

	protected.Post("/extract/tasks", cfg.Extract.Extract)
	protected.Post("/extract/jobs", cfg.Extract.EnqueueJob)
}

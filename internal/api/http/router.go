package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-service/internal/api/http/handlers"
	"github.com/spec-kit/lead-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Public         *handlers.PublicHandler
	Users          *handlers.UsersHandler
	Leads          *handlers.LeadsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/public/leads", cfg.Public.SubmitLead)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Put("/profile", cfg.AuthMiddleware.Handle, auth.RequireStaff(), cfg.Users.UpdateProfile)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaff())

	// Static lead routes go before the :id parameter routes.
	staff.Get("/leads/export", cfg.Leads.ExportLeads)
	staff.Get("/reports/summary", cfg.Leads.ReportSummary)
	staff.Post("/leads/assign", auth.RequireAdmin(), cfg.Leads.AssignLeads)

	staff.Get("/leads", cfg.Leads.ListLeads)
	staff.Post("/leads", cfg.Leads.CreateLead)
	staff.Get("/leads/:id", cfg.Leads.GetLead)
	staff.Put("/leads/:id", cfg.Leads.UpdateLead)
	staff.Patch("/leads/:id/status", cfg.Leads.UpdateStatus)
	staff.Delete("/leads/:id", auth.RequireAdmin(), cfg.Leads.DeleteLead)

	users := staff.Group("/users", auth.RequireAdmin())
	users.Get("", cfg.Users.ListUsers)
	users.Post("", cfg.Users.CreateUser)
	users.Patch("/:id/role", cfg.Users.UpdateUserRole)
	users.Patch("/:id/password", cfg.Users.ResetUserPassword)
	users.Delete("/:id", cfg.Users.DeleteUser)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/http/handlers"
	"github.com/spec-kit/sla-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tracking       *handlers.TrackingHandler
	Configurations *handlers.ConfigurationsHandler
	Statistics     *handlers.StatisticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/token", cfg.Auth.IssueToken)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	tracking := api.Group("/tracking-records")
	tracking.Post("/", auth.RequireRole(auth.RoleService, auth.RoleAdmin), cfg.Tracking.Create)
	tracking.Get("/breached", auth.RequireRole(), cfg.Tracking.ListBreached)
	tracking.Post("/sweep", auth.RequireRole(auth.RoleService, auth.RoleAdmin), cfg.Tracking.TriggerSweep)
	tracking.Get("/:caseId", auth.RequireRole(), cfg.Tracking.Get)
	tracking.Post("/:caseId/first-response", auth.RequireRole(auth.RoleService, auth.RoleAdmin), cfg.Tracking.RecordFirstResponse)
	tracking.Post("/:caseId/resolution", auth.RequireRole(auth.RoleService, auth.RoleAdmin), cfg.Tracking.RecordResolution)

	configurations := api.Group("/configurations", auth.RequireRole(auth.RoleAdmin))
	configurations.Get("/", cfg.Configurations.List)
	configurations.Post("/", cfg.Configurations.Create)
	configurations.Get("/:id", cfg.Configurations.Get)
	configurations.Put("/:id", cfg.Configurations.Update)
	configurations.Delete("/:id", cfg.Configurations.Delete)

	statistics := api.Group("/statistics", auth.RequireRole())
	statistics.Get("/dashboard", cfg.Statistics.Dashboard)
	statistics.Get("/sellers", cfg.Statistics.Sellers)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/travel-desk/itinerary-service/internal/api/http/handlers"
	"github.com/travel-desk/itinerary-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Itineraries    *handlers.ItineraryHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Routing is non-strict, so each path also
// matches without its trailing slash.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login/", cfg.Auth.Login)
	authGroup.Post("/register/", cfg.Auth.Register)
	authGroup.Post("/logout/", cfg.Auth.Logout)
	authGroup.Post("/token/refresh/", cfg.Auth.Refresh)
	authGroup.Get("/profile/", cfg.AuthMiddleware.Handle, cfg.Auth.Profile)
	authGroup.Get("/employee-profile/", cfg.AuthMiddleware.Handle, cfg.Auth.EmployeeProfile)

	itineraries := app.Group("/itineraries", cfg.AuthMiddleware.Handle)
	itineraries.Get("/", cfg.Itineraries.List)
	itineraries.Post("/", cfg.Itineraries.Create)
	itineraries.Get("/:id/", cfg.Itineraries.Get)
	itineraries.Put("/:id/", cfg.Itineraries.Update)
	itineraries.Patch("/:id/", cfg.Itineraries.Withdraw)
	itineraries.Delete("/:id/", cfg.Itineraries.Delete)
}

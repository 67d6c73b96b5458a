package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/spec-kit/rental-service/internal/api/http/handlers"
	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health           *handlers.HealthHandler
	Auth             *handlers.AuthHandler
	Listings         *handlers.ListingsHandler
	Bookings         *handlers.BookingsHandler
	Admin            *handlers.AdminHandler
	AuthMiddleware   *auth.AuthMiddleware
	CORSAllowOrigins string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	origins := strings.TrimSpace(cfg.CORSAllowOrigins)
	if origins == "" {
		origins = "*"
	}
	api := app.Group("/api", cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	authed := cfg.AuthMiddleware.Handle

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", authed, auth.RequireAuthenticated(), cfg.Auth.Me)

	listings := api.Group("/listings")
	listings.Get("/", cfg.Listings.List)
	// registered before /:id so the literal path wins
	listings.Get("/host/my-listings", authed, auth.RequireRole(domain.RoleHost), cfg.Listings.Mine)
	listings.Get("/:id", cfg.Listings.Get)
	listings.Post("/", authed, auth.RequireRole(domain.RoleHost), cfg.Listings.Create)
	listings.Put("/:id", authed, auth.RequireRole(domain.RoleHost), cfg.Listings.Update)
	listings.Delete("/:id", authed, auth.RequireRole(domain.RoleHost), cfg.Listings.Delete)

	bookings := api.Group("/bookings", authed, auth.RequireRole(domain.RoleGuest))
	bookings.Post("/", cfg.Bookings.Create)
	bookings.Get("/me", cfg.Bookings.Mine)

	admin := api.Group("/admin", authed, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.Users)
	admin.Get("/listings", cfg.Admin.Listings)
	admin.Get("/bookings", cfg.Admin.Bookings)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)
	admin.Delete("/listings/:id", cfg.Admin.DeleteListing)
	admin.Put("/users/:id/promote", cfg.Admin.Promote)
}

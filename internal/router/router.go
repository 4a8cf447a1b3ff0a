package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/stagehub-api/internal/config"
	"github.com/noah-isme/stagehub-api/internal/handler"
	"github.com/noah-isme/stagehub-api/internal/middleware"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AccountHandler      *handler.AccountHandler
	StudentHandler      *handler.StudentHandler
	CompanyHandler      *handler.CompanyHandler
	OfferHandler        *handler.OfferHandler
	ApplicationHandler  *handler.ApplicationHandler
	MatchingHandler     *handler.MatchingHandler
	MessageHandler      *handler.MessageHandler
	NotificationHandler *handler.NotificationHandler
	AdminHandler        *handler.AdminHandler
	HealthProbes        map[string]handler.HealthProbe
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	if deps.AccountHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("register", 5, time.Minute))
		deps.AccountHandler.Register(auth)
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public routes are registered above; everything below requires a bearer token.
	protected := app.Group("/api/v1", jwtMiddleware)
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(protected)
	}
	if deps.CompanyHandler != nil {
		deps.CompanyHandler.Register(protected)
	}
	if deps.OfferHandler != nil {
		deps.OfferHandler.Register(protected)
	}
	if deps.ApplicationHandler != nil {
		deps.ApplicationHandler.Register(protected)
	}
	if deps.MatchingHandler != nil {
		deps.MatchingHandler.Register(protected)
	}
	if deps.MessageHandler != nil {
		deps.MessageHandler.Register(protected)
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(protected)
	}

	if deps.AdminHandler != nil {
		admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.AdminHandler.Register(admin)
	}
}

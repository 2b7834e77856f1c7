package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/lms-api/internal/config"
	"github.com/campuskit/lms-api/internal/handler"
	"github.com/campuskit/lms-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ContentHandler    *handler.ContentHandler
	SubmissionHandler *handler.SubmissionHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	lms := api.Group("/lms", jwtMiddleware)

	// Content routes first so /upload wins over the :contentId parameter.
	if deps.ContentHandler != nil {
		deps.ContentHandler.Register(lms)
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(lms)
	}
}

// Package server assembles the Fiber application.
package server

import (
	"time"

	"flowershop/internal/handlers"
	"flowershop/internal/middleware"
	"flowershop/internal/services"
	"flowershop/internal/views"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Options configures NewApp.
type Options struct {
	Products *services.ProductService
	// Auth enables the /auth routes and protects API writes when set.
	Auth *services.AuthService
	// Quiet disables the request logger.
	Quiet bool
}

// NewApp builds the Fiber app with API routes registered ahead of the page
// routes, whose "/:id" pattern would otherwise shadow them.
func NewApp(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        views.NewEngine(),
		ViewsLayout:  views.Layout,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	if !opts.Quiet {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	var protect []fiber.Handler
	if opts.Auth != nil {
		handlers.NewAuthHandler(opts.Auth).RegisterRoutes(app)
		protect = append(protect, middleware.AuthRequired(opts.Auth))
	}

	handlers.NewProductHandler(opts.Products).RegisterRoutes(app, protect...)
	handlers.NewPageHandler(opts.Products).RegisterRoutes(app)

	return app
}

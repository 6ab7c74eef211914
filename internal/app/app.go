// Package app assembles the HTTP server from its parts: database, queue,
// repositories, handlers, and routes.
package app

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shlior7/scenergy/internal/api/middleware"
	"github.com/shlior7/scenergy/internal/api/v1/handlers"
	v1 "github.com/shlior7/scenergy/internal/api/v1/routes"
	"github.com/shlior7/scenergy/internal/db"
	"github.com/shlior7/scenergy/internal/db/repos"
	"github.com/shlior7/scenergy/internal/queue"
)

// NewApp builds the fiber application serving the v1 API over the given
// database handle. The queue gets a notify-based waker so enqueued jobs
// reach idle workers without waiting out a poll interval.
func NewApp(gdb *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(middleware.Logger())

	// Health check, outside the tenant-scoped tree
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	jobQueue := queue.New(repos.NewJobRepository(gdb), db.NewNotifyWaker(gdb))

	// Register versioned routes
	v1.Register(app, v1.Handlers{
		Jobs:        handlers.NewJobHandler(jobQueue),
		Products:    handlers.NewProductHandler(repos.NewProductRepository(gdb)),
		Connections: handlers.NewConnectionHandler(repos.NewStoreConnectionRepository(gdb)),
	})

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

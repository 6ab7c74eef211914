package v1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shlior7/scenergy/internal/api/middleware"
	"github.com/shlior7/scenergy/internal/api/v1/handlers"
)

// Handlers bundles the handler instances the v1 routes dispatch to
type Handlers struct {
	Jobs        *handlers.JobHandler
	Products    *handlers.ProductHandler
	Connections *handlers.ConnectionHandler
}

// SetupRoutes configures all the v1 routes
func SetupRoutes(router fiber.Router, h Handlers) {
	// Job routes
	jobs := router.Group("/jobs")
	jobs.Get("/", h.Jobs.ListJobs)
	jobs.Post("/", h.Jobs.EnqueueJob)
	jobs.Get("/:id", h.Jobs.GetJob)
	jobs.Post("/:id/cancel", h.Jobs.CancelJob)

	// Product routes
	products := router.Group("/products")
	products.Get("/", h.Products.ListProducts)
	products.Get("/:id", h.Products.GetProduct)

	// Store connection routes
	connections := router.Group("/connections")
	connections.Get("/", h.Connections.ListConnections)
	connections.Post("/", h.Connections.CreateConnection)
}

// Register registers the v1 routes. Everything under the prefix is
// tenant-scoped and sits behind the tenant middleware.
func Register(app *fiber.App, h Handlers) {
	// API v1 routes
	v1Group := app.Group("/api/v1", middleware.Tenant())
	SetupRoutes(v1Group, h)
}

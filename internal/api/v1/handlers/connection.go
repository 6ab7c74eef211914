package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shlior7/scenergy/internal/api/middleware"
	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/db/repos"
	"github.com/shlior7/scenergy/internal/types"
)

// ConnectionHandler handles HTTP requests for store connections
type ConnectionHandler struct {
	connections *repos.StoreConnectionRepository
}

// NewConnectionHandler creates a new connection handler instance
func NewConnectionHandler(connections *repos.StoreConnectionRepository) *ConnectionHandler {
	return &ConnectionHandler{connections: connections}
}

// CreateConnection handles the request to connect a store
func (h *ConnectionHandler) CreateConnection(c *fiber.Ctx) error {
	var req types.CreateConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(errInvalidInput(err.Error()))
	}

	conn := &models.StoreConnection{
		TenantID:    middleware.TenantID(c),
		Provider:    models.StoreProvider(req.Provider),
		ShopDomain:  req.ShopDomain,
		AccessToken: req.AccessToken,
		Active:      true,
	}
	if err := conn.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(errInvalidInput(err.Error()))
	}
	if req.AccessToken == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(errInvalidInput("access_token is required"))
	}

	if err := h.connections.Create(c.Context(), conn); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(errServer(err.Error()))
	}

	return c.Status(fiber.StatusCreated).
		JSON(Response{
			Slug: SuccessSlug,
			Data: conn,
		})
}

// ListConnections handles the request to list the tenant's store connections
func (h *ConnectionHandler) ListConnections(c *fiber.Ctx) error {
	conns, err := h.connections.List(c.Context(), middleware.TenantID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(errServer(err.Error()))
	}

	return c.JSON(Response{
		Slug: SuccessSlug,
		Data: conns,
	})
}

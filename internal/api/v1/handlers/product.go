package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/shlior7/scenergy/internal/api/middleware"
	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/db/repos"
)

// ProductHandler handles HTTP requests for imported catalog products
type ProductHandler struct {
	products *repos.ProductRepository
}

// NewProductHandler creates a new product handler instance
func NewProductHandler(products *repos.ProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

// ListProducts handles the request to list the tenant's imported products
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	opts := &models.ListOptions{
		Limit:  c.QueryInt("limit", models.DefaultLimit),
		Offset: c.QueryInt("offset", 0),
	}

	products, err := h.products.List(c.Context(), middleware.TenantID(c), opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(errServer(err.Error()))
	}

	return c.JSON(Response{
		Slug: SuccessSlug,
		Data: products,
	})
}

// GetProduct handles the request to get a single product
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(errInvalidInput("invalid product id"))
	}

	product, err := h.products.GetByID(c.Context(), middleware.TenantID(c), uint(id))
	if err != nil {
		if errors.Is(err, repos.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(errNotFound("product not found"))
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(errServer(err.Error()))
	}

	return c.JSON(Response{
		Slug: SuccessSlug,
		Data: product,
	})
}

package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/shlior7/scenergy/internal/constants"
)

// Tenant extracts the caller's tenant id from the X-Tenant-Id header and
// stores it in the request locals. Every resource under /api/v1 is
// tenant-scoped, so requests without a tenant are rejected up front.
// Verifying the caller is actually who the header claims is left to the
// auth layer in front of this service.
func Tenant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := c.Get(constants.TenantHeader)
		if tenantID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fmt.Sprintf("%s header is required", constants.TenantHeader),
			})
		}

		c.Locals(constants.TenantLocalKey, tenantID)
		return c.Next()
	}
}

// TenantID returns the tenant id the Tenant middleware resolved for this
// request, or an empty string when the middleware did not run
func TenantID(c *fiber.Ctx) string {
	tenantID, _ := c.Locals(constants.TenantLocalKey).(string)
	return tenantID
}

package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shlior7/scenergy/internal/logger"
)

// Logger returns a middleware that logs HTTP requests
func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Continue chain
		err := c.Next()

		// After request
		latency := time.Since(start)

		logger.InfoWithFields("Request", map[string]interface{}{
			"status":     c.Response().StatusCode(),
			"latency_ms": latency.Milliseconds(),
			"ip":         c.IP(),
			"method":     c.Method(),
			"path":       c.Path(),
			"tenant_id":  TenantID(c),
		})

		return err
	}
}

package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

// LoggerMiddleware structured logging สำหรับทุก request
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		logger.DebugContext(c.UserContext(), "Request started",
			"method", c.Method(),
			"path", c.Path(),
			"ip", c.IP(),
		)

		// Process request
		err := c.Next()

		// Calculate latency
		latency := time.Since(start)

		// Get status code
		status := c.Response().StatusCode()

		// Log request completed
		logFunc := logger.InfoContext
		if status >= 500 {
			logFunc = logger.ErrorContext
		} else if status >= 400 {
			logFunc = logger.WarnContext
		}

		args := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", latency.String(),
			"bytes", len(c.Response().Body()),
		}
		if p, err := utils.GetPrincipal(c); err == nil {
			args = append(args, "actor_id", p.ID, "role", p.Role)
		}
		logFunc(c.UserContext(), "Request completed", args...)

		return err
	}
}

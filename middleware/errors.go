package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler turns any error escaping a handler into a JSON body. Unknown errors become a
// generic 500 and are logged; fiber errors keep their status.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ErrorResponse(c, fe.Code, fe.Message)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("request timed out", "method", c.Method(), "path", c.Path())
			return ErrorResponse(c, fiber.StatusGatewayTimeout, "request timed out")
		}

		logger.Error("unhandled error", "method", c.Method(), "path", c.Path(), "err", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "internal server error")
	}
}

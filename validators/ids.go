package validators

import (
	"strings"

	"languagevio/middleware"
	"languagevio/models"

	"github.com/gofiber/fiber/v2"
)

// PathID rejects malformed record ids in the named route parameter.
func PathID(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Params(param))
		if id == "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "ID is required!")
		}
		if !models.IsValidID(id) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ID!")
		}
		return c.Next()
	}
}

package authValidator

import (
	"encoding/json"

	"languagevio/middleware"

	"github.com/gofiber/fiber/v2"
)

const ClaimsKey = "validatedClaims"

// TokenRequest accepts any JSON object as the claim set; arrays, scalars and null are rejected.
func TokenRequest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var claims map[string]interface{}
		if err := json.Unmarshal(c.Body(), &claims); err != nil || claims == nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Request body must be a JSON object!")
		}
		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

package authRoutes

import (
	authController "languagevio/controllers/auth"
	"languagevio/validators/authValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, h *authController.Handler) {
	app.Post("/jwt", authValidator.TokenRequest(), h.IssueToken)
}

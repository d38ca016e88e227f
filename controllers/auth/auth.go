package authController

import (
	"log/slog"

	"languagevio/middleware"
	"languagevio/validators/authValidator"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	tokens *middleware.TokenService
	logger *slog.Logger
}

func NewHandler(tokens *middleware.TokenService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{tokens: tokens, logger: logger}
}

// IssueToken signs whatever claims the client posts. The client is trusted to have
// authenticated with the identity provider first.
func (h *Handler) IssueToken(c *fiber.Ctx) error {
	claims, ok := c.Locals(authValidator.ClaimsKey).(map[string]interface{})
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Request body must be a JSON object!")
	}

	token, err := h.tokens.Issue(claims)
	if err != nil {
		h.logger.Error("token signing failed", "err", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to issue token!")
	}

	return c.JSON(fiber.Map{"token": token})
}

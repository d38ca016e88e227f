package middleware

import (
	"errors"
	"log/slog"

	"languagevio/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Guard bundles the token gate with the role and ownership checks that need the user store.
type Guard struct {
	tokens *TokenService
	db     *gorm.DB
	logger *slog.Logger
}

func NewGuard(tokens *TokenService, db *gorm.DB, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{tokens: tokens, db: db, logger: logger}
}

// RequireRole must run after JWT. A caller without a user record is treated as a role mismatch.
func (g *Guard) RequireRole(required models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := CallerEmail(c)
		if email == "" {
			return ErrorResponse(c, fiber.StatusForbidden, MsgForbidden)
		}

		var user models.User
		err := g.db.WithContext(c.UserContext()).Where("email = ?", email).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrorResponse(c, fiber.StatusForbidden, MsgForbidden)
			}
			g.logger.Error("role lookup failed", "email", email, "role", required, "err", err)
			return ErrorResponse(c, fiber.StatusInternalServerError, "Server error while checking permissions!")
		}

		if models.RoleOf(&user) != required {
			return ErrorResponse(c, fiber.StatusForbidden, MsgForbidden)
		}
		return c.Next()
	}
}

func (g *Guard) Admin() fiber.Handler {
	return g.RequireRole(models.RoleAdmin)
}

func (g *Guard) Instructor() fiber.Handler {
	return g.RequireRole(models.RoleInstructor)
}

// OwnsQueryEmail enforces that the query parameter names the caller. An absent parameter
// answers with an empty list and stops the chain.
func (g *Guard) OwnsQueryEmail(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.Query(param)
		if email == "" {
			return c.Status(fiber.StatusOK).JSON([]interface{}{})
		}
		if CallerEmail(c) != email {
			return ErrorResponse(c, fiber.StatusForbidden, MsgForbidden)
		}
		return c.Next()
	}
}

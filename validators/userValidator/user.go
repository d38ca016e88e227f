package userValidator

import (
	"languagevio/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	CreateUserKey = "validatedCreateUser"
	PromoteKey    = "validatedPromote"
)

// CreateUserRequest is the sign-in upsert payload. Any role sent by the client is dropped.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"required,email"`
	Photo string `json:"photo"`
}

// PromoteRequest optionally carries directory fields for promote-to-instructor.
type PromoteRequest struct {
	Name    string                 `json:"name"`
	Photo   string                 `json:"photo"`
	Details map[string]interface{} `json:"details"`
}

func CreateUser() fiber.Handler {
	return validators.Body[CreateUserRequest](CreateUserKey)
}

// Promote tolerates an empty body since the user record supplies the defaults.
func Promote() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) == 0 {
			c.Locals(PromoteKey, &PromoteRequest{})
			return c.Next()
		}
		return validators.Body[PromoteRequest](PromoteKey)(c)
	}
}

package userRoutes

import (
	userController "languagevio/controllers/userControllers"
	"languagevio/middleware"
	"languagevio/validators"
	"languagevio/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, guard *middleware.Guard, h *userController.Handler) {
	userGroup := app.Group("/users")

	userGroup.Get("", guard.JWT, guard.Admin(), h.GetUsers)
	userGroup.Post("", userValidator.CreateUser(), h.CreateUser)

	userGroup.Get("/admin/:email", guard.JWT, h.IsAdmin)
	userGroup.Patch("/admin/:id", guard.JWT, guard.Admin(), validators.PathID("id"), h.PromoteToAdmin)

	userGroup.Get("/instructor/:email", guard.JWT, h.IsInstructor)
	userGroup.Patch("/instructor/:id", guard.JWT, guard.Admin(), validators.PathID("id"), userValidator.Promote(), h.PromoteToInstructor)
}

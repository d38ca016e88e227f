package classRoutes

import (
	classController "languagevio/controllers/class"
	"languagevio/middleware"
	"languagevio/validators"
	"languagevio/validators/classValidator"

	"github.com/gofiber/fiber/v2"
)

// SetupClassRoutes registers the public catalog, the student cart and the review queue.
func SetupClassRoutes(app *fiber.App, guard *middleware.Guard, h *classController.Handler) {
	app.Get("/classes", h.GetClasses)
	app.Get("/classes/:id", validators.PathID("id"), h.GetClass)
	app.Get("/instructors", h.GetInstructors)

	cartGroup := app.Group("/studentClasses", guard.JWT)
	cartGroup.Get("", guard.OwnsQueryEmail("email"), h.GetSelectedClasses)
	cartGroup.Post("", classValidator.Select(), h.SelectClass)
	cartGroup.Delete("/:id", validators.PathID("id"), h.DeleteSelectedClass)

	reviewGroup := app.Group("/newClasses", guard.JWT)
	reviewGroup.Get("", guard.Admin(), h.GetSubmissions)
	reviewGroup.Patch("/approved/:id", guard.Admin(), validators.PathID("id"), classValidator.Publish(), h.ApproveSubmission)
	reviewGroup.Patch("/denied/:id", guard.Admin(), validators.PathID("id"), h.DenySubmission)
	reviewGroup.Patch("/feedback/:id", guard.Admin(), validators.PathID("id"), classValidator.Feedback(), h.SetFeedback)

	reviewGroup.Get("/instructor", guard.Instructor(), guard.OwnsQueryEmail("email"), h.GetInstructorSubmissions)
	reviewGroup.Post("/instructor", guard.Instructor(), classValidator.Submission(), h.CreateSubmission)
}

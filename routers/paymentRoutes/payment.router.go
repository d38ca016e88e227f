package paymentRoutes

import (
	paymentController "languagevio/controllers/payment"
	"languagevio/middleware"
	"languagevio/validators/paymentValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App, guard *middleware.Guard, h *paymentController.Handler) {
	app.Post("/create-payment-intent", guard.JWT, paymentValidator.Intent(), h.CreatePaymentIntent)

	app.Post("/payments", guard.JWT, paymentValidator.Checkout(), h.CreatePayment)
	app.Get("/payments", guard.JWT, guard.OwnsQueryEmail("email"), h.GetPayments)

	app.Get("/enrolledClasses", guard.JWT, guard.OwnsQueryEmail("email"), h.GetEnrolledClasses)
}

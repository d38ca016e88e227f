package paymentValidator

import (
	"time"

	"languagevio/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	IntentKey   = "validatedIntent"
	CheckoutKey = "validatedCheckout"
)

type IntentRequest struct {
	Price float64 `json:"price" validate:"gt=0"`
}

// CheckoutRequest is the payment record posted after the gateway confirmed the charge.
// Seats and Students are the absolute counters the client computed.
type CheckoutRequest struct {
	UserEmail       string    `json:"userEmail" validate:"required,email"`
	ClassID         string    `json:"classId" validate:"required"`
	ApprovedID      string    `json:"approvedId" validate:"required"`
	SelectedID      string    `json:"selectedId" validate:"required"`
	Seats           int       `json:"seats" validate:"gte=0"`
	Students        int       `json:"students" validate:"gte=0"`
	Price           float64   `json:"price" validate:"gte=0"`
	TransactionID   string    `json:"transactionId"`
	Name            string    `json:"name"`
	Image           string    `json:"image"`
	InstructorName  string    `json:"instructorName"`
	Email           string    `json:"email" validate:"omitempty,email"`
	Date            time.Time `json:"date"`
	ExpectedVersion *int      `json:"expectedVersion" validate:"omitempty,gte=0"`
}

func Intent() fiber.Handler {
	return validators.Body[IntentRequest](IntentKey)
}

func Checkout() fiber.Handler {
	return validators.Body[CheckoutRequest](CheckoutKey)
}

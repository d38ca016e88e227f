package classValidator

import (
	"languagevio/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	SubmissionKey = "validatedSubmission"
	PublishKey    = "validatedPublish"
	FeedbackKey   = "validatedFeedback"
	SelectKey     = "validatedSelect"
)

// SubmissionRequest is an instructor's new class. Status is never taken from the client.
type SubmissionRequest struct {
	InstructorEmail string                 `json:"instructorEmail" validate:"omitempty,email"`
	InstructorName  string                 `json:"instructorName"`
	Name            string                 `json:"name" validate:"required"`
	Image           string                 `json:"image"`
	Price           float64                `json:"price" validate:"gte=0"`
	Seats           int                    `json:"seats" validate:"gte=0"`
	Students        int                    `json:"students" validate:"gte=0"`
	Details         map[string]interface{} `json:"details"`
}

// PublishRequest is the published-class document an admin posts on approval.
type PublishRequest struct {
	InstructorEmail string                 `json:"instructorEmail" validate:"omitempty,email"`
	InstructorName  string                 `json:"instructorName"`
	Name            string                 `json:"name" validate:"required"`
	Image           string                 `json:"image"`
	Price           float64                `json:"price" validate:"gte=0"`
	Seats           int                    `json:"seats" validate:"gte=0"`
	Students        int                    `json:"students" validate:"gte=0"`
	Details         map[string]interface{} `json:"details"`
}

// FeedbackRequest may carry an empty string, which clears earlier feedback.
type FeedbackRequest struct {
	Feedback string `json:"feedback"`
}

// SelectRequest adds a class to a student's cart.
type SelectRequest struct {
	UserEmail      string  `json:"userEmail" validate:"omitempty,email"`
	ClassID        string  `json:"classId" validate:"required"`
	ApprovedID     string  `json:"approvedId"`
	Name           string  `json:"name"`
	Image          string  `json:"image"`
	InstructorName string  `json:"instructorName"`
	Price          float64 `json:"price" validate:"gte=0"`
	Seats          int     `json:"seats" validate:"gte=0"`
	Students       int     `json:"students" validate:"gte=0"`
}

func Submission() fiber.Handler {
	return validators.Body[SubmissionRequest](SubmissionKey)
}

func Publish() fiber.Handler {
	return validators.Body[PublishRequest](PublishKey)
}

func Feedback() fiber.Handler {
	return validators.Body[FeedbackRequest](FeedbackKey)
}

func Select() fiber.Handler {
	return validators.Body[SelectRequest](SelectKey)
}

package paymentController

import (
	"errors"
	"fmt"
	"log/slog"

	"languagevio/middleware"
	"languagevio/models"
	"languagevio/services/enrollment"
	"languagevio/utils"
	"languagevio/validators/paymentValidator"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Handler struct {
	db       *gorm.DB
	gateway  utils.PaymentGateway
	workflow *enrollment.Workflow
	currency string
	logger   *slog.Logger
}

func NewHandler(db *gorm.DB, gateway utils.PaymentGateway, workflow *enrollment.Workflow, currency string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if currency == "" {
		currency = "usd"
	}
	return &Handler{db: db, gateway: gateway, workflow: workflow, currency: currency, logger: logger}
}

// CreatePaymentIntent opens a card intent for price and returns its client secret.
// An Idempotency-Key header is forwarded so client retries reuse one intent.
func (h *Handler) CreatePaymentIntent(c *fiber.Ctx) error {
	reqData, ok := c.Locals(paymentValidator.IntentKey).(*paymentValidator.IntentRequest)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body!")
	}

	amount, err := utils.ToMinorUnits(reqData.Price)
	if errors.Is(err, utils.ErrAmountTooLarge) {
		return middleware.ValidationErrorResponse(c, map[string]string{"price": "price is too large!"})
	}
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"price": "price must be greater than 0!"})
	}

	secret, err := h.gateway.CreateIntent(c.UserContext(), utils.IntentRequest{
		Amount:         amount,
		Currency:       h.currency,
		IdempotencyKey: c.Get("Idempotency-Key"),
	})
	if err != nil {
		h.logger.Error("payment intent failed", "email", middleware.CallerEmail(c), "amount", amount, "err", err)
		return middleware.ErrorResponse(c, fiber.StatusBadGateway, "Payment gateway unavailable!")
	}

	return c.JSON(fiber.Map{"clientSecret": secret})
}

// CreatePayment records a confirmed payment and completes the enrollment.
func (h *Handler) CreatePayment(c *fiber.Ctx) error {
	reqData, ok := c.Locals(paymentValidator.CheckoutKey).(*paymentValidator.CheckoutRequest)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body!")
	}
	if reqData.UserEmail != middleware.CallerEmail(c) {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, middleware.MsgForbidden)
	}

	res, err := h.workflow.Complete(c.UserContext(), enrollment.Checkout{
		UserEmail:       reqData.UserEmail,
		ClassID:         reqData.ClassID,
		ApprovedID:      reqData.ApprovedID,
		SelectedID:      reqData.SelectedID,
		Seats:           reqData.Seats,
		Students:        reqData.Students,
		Price:           reqData.Price,
		TransactionID:   reqData.TransactionID,
		Name:            reqData.Name,
		Image:           reqData.Image,
		InstructorName:  reqData.InstructorName,
		Email:           reqData.Email,
		Date:            reqData.Date,
		ExpectedVersion: reqData.ExpectedVersion,
	})
	if err == nil {
		return c.JSON(res)
	}

	switch {
	case errors.Is(err, enrollment.ErrClassNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "Class not found!")
	case errors.Is(err, enrollment.ErrSubmissionNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "Class submission not found!")
	case errors.Is(err, enrollment.ErrSelectionNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "Selected class not found!")
	case errors.Is(err, enrollment.ErrConcurrentUpdate):
		return middleware.ErrorResponse(c, fiber.StatusConflict, "Class was updated by another enrollment, please retry!")
	}

	var stepErr *enrollment.StepError
	if errors.As(err, &stepErr) && res != nil {
		h.logger.Error("enrollment left partial state", "step", stepErr.Step, "user", reqData.UserEmail, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":      true,
			"message":    "Enrollment failed at step " + stepErr.Step + "!",
			"failedStep": stepErr.Step,
			"result":     res,
		})
	}
	return fmt.Errorf("complete enrollment: %w", err)
}

// GetPayments runs behind OwnsQueryEmail.
func (h *Handler) GetPayments(c *fiber.Ctx) error {
	payments := []models.Payment{}
	err := h.db.WithContext(c.UserContext()).
		Where("user_email = ?", c.Query("email")).
		Order("date desc").
		Find(&payments).Error
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}
	return c.JSON(payments)
}

// GetEnrolledClasses runs behind OwnsQueryEmail.
func (h *Handler) GetEnrolledClasses(c *fiber.Ctx) error {
	enrolled := []models.EnrolledClass{}
	err := h.db.WithContext(c.UserContext()).
		Where("user_email = ?", c.Query("email")).
		Order("date desc").
		Find(&enrolled).Error
	if err != nil {
		return fmt.Errorf("list enrolled classes: %w", err)
	}
	return c.JSON(enrolled)
}

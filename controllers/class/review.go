package classController

import (
	"errors"
	"fmt"

	"languagevio/middleware"
	"languagevio/models"
	"languagevio/utils"
	"languagevio/validators/classValidator"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	errSubmissionNotFound = errors.New("submission not found")
	errAlreadyReviewed    = errors.New("submission already reviewed")
)

func (h *Handler) GetSubmissions(c *fiber.Ctx) error {
	submissions := []models.ClassSubmission{}
	if err := h.db.WithContext(c.UserContext()).Order("created_at asc").Find(&submissions).Error; err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}
	return c.JSON(submissions)
}

// GetInstructorSubmissions runs behind OwnsQueryEmail.
func (h *Handler) GetInstructorSubmissions(c *fiber.Ctx) error {
	submissions := []models.ClassSubmission{}
	err := h.db.WithContext(c.UserContext()).
		Where("instructor_email = ?", c.Query("email")).
		Order("created_at asc").
		Find(&submissions).Error
	if err != nil {
		return fmt.Errorf("list instructor submissions: %w", err)
	}
	return c.JSON(submissions)
}

func (h *Handler) CreateSubmission(c *fiber.Ctx) error {
	reqData, ok := c.Locals(classValidator.SubmissionKey).(*classValidator.SubmissionRequest)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body!")
	}

	caller := middleware.CallerEmail(c)
	if reqData.InstructorEmail == "" {
		reqData.InstructorEmail = caller
	}
	if reqData.InstructorEmail != caller {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, middleware.MsgForbidden)
	}

	submission := models.ClassSubmission{
		InstructorEmail: reqData.InstructorEmail,
		InstructorName:  reqData.InstructorName,
		Name:            reqData.Name,
		Image:           reqData.Image,
		Price:           reqData.Price,
		Seats:           reqData.Seats,
		Students:        reqData.Students,
		Status:          models.StatusPending,
	}
	if reqData.Details != nil {
		submission.Details = datatypes.JSONMap(reqData.Details)
	}
	if err := h.db.WithContext(c.UserContext()).Create(&submission).Error; err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return c.JSON(models.InsertResult{InsertedID: submission.ID})
}

// transition moves a pending submission to status inside tx. Reviewed submissions stay put.
func transition(tx *gorm.DB, id string, status models.SubmissionStatus) (*models.ClassSubmission, models.UpdateResult, error) {
	upd := tx.Model(&models.ClassSubmission{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Update("status", status)
	if upd.Error != nil {
		return nil, models.UpdateResult{}, upd.Error
	}

	var submission models.ClassSubmission
	if err := tx.Where("id = ?", id).First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.UpdateResult{}, errSubmissionNotFound
		}
		return nil, models.UpdateResult{}, err
	}
	if upd.RowsAffected == 0 {
		return &submission, models.UpdateResult{}, errAlreadyReviewed
	}
	return &submission, models.Updated(upd.RowsAffected), nil
}

func (h *Handler) reviewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errSubmissionNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "Class submission not found!")
	case errors.Is(err, errAlreadyReviewed):
		return middleware.ErrorResponse(c, fiber.StatusConflict, "Class submission was already reviewed!")
	default:
		return fmt.Errorf("review submission: %w", err)
	}
}

// ApproveSubmission publishes the posted class document and marks the submission approved.
func (h *Handler) ApproveSubmission(c *fiber.Ctx) error {
	reqData, ok := c.Locals(classValidator.PublishKey).(*classValidator.PublishRequest)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body!")
	}
	id := c.Params("id")

	var (
		submission *models.ClassSubmission
		result     models.UpdateResult
		class      models.PublishedClass
	)
	err := h.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		submission, result, err = transition(tx, id, models.StatusApproved)
		if err != nil {
			return err
		}

		class = models.PublishedClass{
			SubmissionID:    submission.ID,
			InstructorEmail: firstNonEmpty(reqData.InstructorEmail, submission.InstructorEmail),
			InstructorName:  firstNonEmpty(reqData.InstructorName, submission.InstructorName),
			Name:            reqData.Name,
			Image:           reqData.Image,
			Price:           reqData.Price,
			Seats:           reqData.Seats,
			Students:        reqData.Students,
		}
		if reqData.Details != nil {
			class.Details = datatypes.JSONMap(reqData.Details)
		}
		return tx.Create(&class).Error
	})
	if err != nil {
		return h.reviewError(c, err)
	}

	h.logger.Info("class approved", "submission", id, "class", class.ID, "by", middleware.CallerEmail(c))
	utils.SendAsync(h.mailer, h.logger,
		utils.ClassReviewedEmail(submission.InstructorEmail, submission.InstructorName, submission.Name, true))

	return c.JSON(fiber.Map{
		"result":   result,
		"newClass": models.InsertResult{InsertedID: class.ID},
	})
}

func (h *Handler) DenySubmission(c *fiber.Ctx) error {
	id := c.Params("id")

	var (
		submission *models.ClassSubmission
		result     models.UpdateResult
	)
	err := h.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var err error
		submission, result, err = transition(tx, id, models.StatusDenied)
		return err
	})
	if err != nil {
		return h.reviewError(c, err)
	}

	h.logger.Info("class denied", "submission", id, "by", middleware.CallerEmail(c))
	utils.SendAsync(h.mailer, h.logger,
		utils.ClassReviewedEmail(submission.InstructorEmail, submission.InstructorName, submission.Name, false))

	return c.JSON(result)
}

// SetFeedback stores admin feedback regardless of review status.
func (h *Handler) SetFeedback(c *fiber.Ctx) error {
	reqData, ok := c.Locals(classValidator.FeedbackKey).(*classValidator.FeedbackRequest)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body!")
	}

	upd := h.db.WithContext(c.UserContext()).
		Model(&models.ClassSubmission{}).
		Where("id = ?", c.Params("id")).
		Update("feedback", reqData.Feedback)
	if upd.Error != nil {
		return fmt.Errorf("set feedback: %w", upd.Error)
	}
	return c.JSON(models.Updated(upd.RowsAffected))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

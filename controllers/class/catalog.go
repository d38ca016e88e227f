package classController

import (
	"errors"
	"fmt"
	"log/slog"

	"languagevio/middleware"
	"languagevio/models"
	"languagevio/utils"
	"languagevio/validators/classValidator"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	mailer utils.Mailer
	logger *slog.Logger
}

func NewHandler(db *gorm.DB, mailer utils.Mailer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{db: db, mailer: mailer, logger: logger}
}

func (h *Handler) GetClasses(c *fiber.Ctx) error {
	classes := []models.PublishedClass{}
	if err := h.db.WithContext(c.UserContext()).Order("created_at asc").Find(&classes).Error; err != nil {
		return fmt.Errorf("list classes: %w", err)
	}
	return c.JSON(classes)
}

func (h *Handler) GetClass(c *fiber.Ctx) error {
	var class models.PublishedClass
	err := h.db.WithContext(c.UserContext()).Where("id = ?", c.Params("id")).First(&class).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "Class not found!")
	}
	if err != nil {
		return fmt.Errorf("get class: %w", err)
	}
	return c.JSON(class)
}

func (h *Handler) GetInstructors(c *fiber.Ctx) error {
	instructors := []models.Instructor{}
	if err := h.db.WithContext(c.UserContext()).Order("created_at asc").Find(&instructors).Error; err != nil {
		return fmt.Errorf("list instructors: %w", err)
	}
	return c.JSON(instructors)
}

// GetSelectedClasses runs behind OwnsQueryEmail, so the query email is the caller's.
func (h *Handler) GetSelectedClasses(c *fiber.Ctx) error {
	selected := []models.SelectedClass{}
	err := h.db.WithContext(c.UserContext()).
		Where("user_email = ?", c.Query("email")).
		Order("created_at asc").
		Find(&selected).Error
	if err != nil {
		return fmt.Errorf("list selected classes: %w", err)
	}
	return c.JSON(selected)
}

func (h *Handler) SelectClass(c *fiber.Ctx) error {
	reqData, ok := c.Locals(classValidator.SelectKey).(*classValidator.SelectRequest)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body!")
	}

	caller := middleware.CallerEmail(c)
	if reqData.UserEmail == "" {
		reqData.UserEmail = caller
	}
	if reqData.UserEmail != caller {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, middleware.MsgForbidden)
	}

	selected := models.SelectedClass{
		UserEmail:      reqData.UserEmail,
		ClassID:        reqData.ClassID,
		ApprovedID:     reqData.ApprovedID,
		Name:           reqData.Name,
		Image:          reqData.Image,
		InstructorName: reqData.InstructorName,
		Price:          reqData.Price,
		Seats:          reqData.Seats,
		Students:       reqData.Students,
	}
	if err := h.db.WithContext(c.UserContext()).Create(&selected).Error; err != nil {
		return fmt.Errorf("select class: %w", err)
	}
	return c.JSON(models.InsertResult{InsertedID: selected.ID})
}

// DeleteSelectedClass removes one of the caller's cart entries. Another user's entry is forbidden.
func (h *Handler) DeleteSelectedClass(c *fiber.Ctx) error {
	db := h.db.WithContext(c.UserContext())
	id := c.Params("id")

	var selected models.SelectedClass
	err := db.Where("id = ?", id).First(&selected).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(models.DeleteResult{DeletedCount: 0})
	}
	if err != nil {
		return fmt.Errorf("lookup selected class: %w", err)
	}
	if selected.UserEmail != middleware.CallerEmail(c) {
		return middleware.ErrorResponse(c, fiber.StatusForbidden, middleware.MsgForbidden)
	}

	del := db.Where("id = ? AND user_email = ?", id, selected.UserEmail).Delete(&models.SelectedClass{})
	if del.Error != nil {
		return fmt.Errorf("delete selected class: %w", del.Error)
	}
	return c.JSON(models.DeleteResult{DeletedCount: del.RowsAffected})
}

package userController

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"languagevio/middleware"
	"languagevio/models"
	"languagevio/validators/userValidator"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var errUserNotFound = errors.New("user not found")

type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{db: db, logger: logger}
}

func (h *Handler) GetUsers(c *fiber.Ctx) error {
	users := []models.User{}
	if err := h.db.WithContext(c.UserContext()).Order("created_at asc").Find(&users).Error; err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	return c.JSON(users)
}

// CreateUser records a first sign-in. Repeat sign-ins are acknowledged without writing.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	reqData, ok := c.Locals(userValidator.CreateUserKey).(*userValidator.CreateUserRequest)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body!")
	}
	db := h.db.WithContext(c.UserContext())

	exists, err := h.userExists(db, reqData.Email)
	if err != nil {
		return err
	}
	if exists {
		return c.JSON(fiber.Map{"message": "user already exists"})
	}

	user := models.User{
		Name:  reqData.Name,
		Email: reqData.Email,
		Photo: reqData.Photo,
		Role:  models.RoleStudent,
	}
	if err := db.Create(&user).Error; err != nil {
		// Lost a race against a concurrent sign-in; the unique index kept one row.
		exists, lookupErr := h.userExists(db, reqData.Email)
		if lookupErr != nil {
			return fmt.Errorf("create user: %w", errors.Join(err, lookupErr))
		}
		if exists {
			return c.JSON(fiber.Map{"message": "user already exists"})
		}
		return fmt.Errorf("create user: %w", err)
	}

	return c.JSON(models.InsertResult{InsertedID: user.ID})
}

func (h *Handler) userExists(db *gorm.DB, email string) (bool, error) {
	var n int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}
	return n > 0, nil
}

func (h *Handler) IsAdmin(c *fiber.Ctx) error {
	is, err := h.hasRole(c, models.RoleAdmin)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"admin": is})
}

func (h *Handler) IsInstructor(c *fiber.Ctx) error {
	is, err := h.hasRole(c, models.RoleInstructor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"instructor": is})
}

// hasRole answers false without a lookup when the caller asks about someone else.
// The email segment may arrive percent-encoded.
func (h *Handler) hasRole(c *fiber.Ctx, role models.Role) (bool, error) {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil || email == "" || middleware.CallerEmail(c) != email {
		return false, nil
	}

	var user models.User
	err = h.db.WithContext(c.UserContext()).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}
	return models.RoleOf(&user) == role, nil
}

// PromoteToAdmin sets the admin role and drops the user's instructor directory entry
// in one transaction. An unknown id is reported through matchedCount 0.
func (h *Handler) PromoteToAdmin(c *fiber.Ctx) error {
	id := c.Params("id")
	var (
		result        models.UpdateResult
		oldInstructor models.DeleteResult
	)

	err := h.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		upd := tx.Model(&models.User{}).Where("id = ?", id).Update("role", models.RoleAdmin)
		if upd.Error != nil {
			return upd.Error
		}
		result = models.Updated(upd.RowsAffected)

		del := tx.Where("email = ?", user.Email).Delete(&models.Instructor{})
		if del.Error != nil {
			return del.Error
		}
		oldInstructor = models.DeleteResult{DeletedCount: del.RowsAffected}
		return nil
	})
	if err != nil {
		return fmt.Errorf("promote to admin: %w", err)
	}

	if result.MatchedCount > 0 {
		h.logger.Info("user promoted", "id", id, "role", models.RoleAdmin, "by", middleware.CallerEmail(c))
	}
	return c.JSON(fiber.Map{
		"result":        result,
		"oldInstructor": oldInstructor,
	})
}

// PromoteToInstructor sets the instructor role and upserts the directory entry by email.
func (h *Handler) PromoteToInstructor(c *fiber.Ctx) error {
	id := c.Params("id")
	reqData, _ := c.Locals(userValidator.PromoteKey).(*userValidator.PromoteRequest)
	if reqData == nil {
		reqData = &userValidator.PromoteRequest{}
	}

	var (
		result        models.UpdateResult
		newInstructor *models.InsertResult
	)
	err := h.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errUserNotFound
			}
			return err
		}

		upd := tx.Model(&models.User{}).Where("id = ?", id).Update("role", models.RoleInstructor)
		if upd.Error != nil {
			return upd.Error
		}
		result = models.Updated(upd.RowsAffected)

		entry := models.Instructor{
			Name:  firstNonEmpty(reqData.Name, user.Name),
			Email: user.Email,
			Photo: firstNonEmpty(reqData.Photo, user.Photo),
		}
		if reqData.Details != nil {
			entry.Details = datatypes.JSONMap(reqData.Details)
		}

		var existing models.Instructor
		err := tx.Where("email = ?", user.Email).First(&existing).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{"name": entry.Name, "photo": entry.Photo}
			if entry.Details != nil {
				updates["details"] = entry.Details
			}
			return tx.Model(&existing).Updates(updates).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			newInstructor = &models.InsertResult{InsertedID: entry.ID}
			return nil
		default:
			return err
		}
	})
	if errors.Is(err, errUserNotFound) {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "User not found!")
	}
	if err != nil {
		return fmt.Errorf("promote to instructor: %w", err)
	}

	h.logger.Info("user promoted", "id", id, "role", models.RoleInstructor, "by", middleware.CallerEmail(c),
		"instructorCreated", newInstructor != nil)
	return c.JSON(fiber.Map{
		"result":            result,
		"newInstructor":     newInstructor,
		"instructorCreated": newInstructor != nil,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

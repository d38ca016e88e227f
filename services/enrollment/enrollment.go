// Package enrollment turns a confirmed payment into an enrollment: the payment and
// enrolled-class records are written, the cart entry is removed and the class counters
// are set to the values the client computed.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"languagevio/config"
	"languagevio/models"
	"languagevio/utils"

	"gorm.io/gorm"
)

var (
	ErrClassNotFound      = errors.New("published class not found")
	ErrSubmissionNotFound = errors.New("class submission not found")
	ErrSelectionNotFound  = errors.New("selected class not found")
	ErrConcurrentUpdate   = errors.New("class was modified concurrently")
)

// Steps, in execution order.
const (
	StepPayment    = "payment"
	StepEnrolled   = "enrolledClass"
	StepSelection  = "selectedClass"
	StepClass      = "class"
	StepSubmission = "submission"
)

// StepError names the write that failed in sequential mode.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("enrollment step %s: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

type Checkout struct {
	UserEmail      string
	ClassID        string
	ApprovedID     string
	SelectedID     string
	Seats          int
	Students       int
	Price          float64
	TransactionID  string
	Name           string
	Image          string
	InstructorName string
	Email          string
	Date           time.Time

	// ExpectedVersion pins the class version the counters were computed against.
	ExpectedVersion *int
}

// Result mirrors the per-step write results. Steps that did not run are nil.
type Result struct {
	InsertResult   *models.InsertResult `json:"insertResult"`
	EnrolledResult *models.InsertResult `json:"enrolledResult"`
	DeleteResult   *models.DeleteResult `json:"deleteResult"`
	ClassResult    *models.UpdateResult `json:"classResult"`
	ApprovedResult *models.UpdateResult `json:"approvedResult"`
}

type Workflow struct {
	db     *gorm.DB
	mode   string
	mailer utils.Mailer
	logger *slog.Logger
	now    func() time.Time
}

func NewWorkflow(db *gorm.DB, mode string, mailer utils.Mailer, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	if mode == "" {
		mode = config.EnrollmentTransactional
	}
	return &Workflow{db: db, mode: mode, mailer: mailer, logger: logger, now: time.Now}
}

func (w *Workflow) Mode() string { return w.mode }

// Complete runs the enrollment in the configured mode. In transactional mode an error
// means nothing was written. In sequential mode the returned Result holds whatever
// completed before the failing step.
func (w *Workflow) Complete(ctx context.Context, in Checkout) (*Result, error) {
	payment := w.paymentFrom(in)

	var (
		res *Result
		err error
	)
	if w.mode == config.EnrollmentSequential {
		res, err = w.completeSequential(ctx, in, payment)
	} else {
		res, err = w.completeTransactional(ctx, in, payment)
	}
	if err != nil {
		w.logger.Warn("enrollment failed",
			"mode", w.mode, "user", in.UserEmail, "class", in.ClassID, "selected", in.SelectedID, "err", err)
		return res, err
	}

	w.logger.Info("enrollment completed",
		"mode", w.mode, "user", in.UserEmail, "class", in.ClassID, "payment", payment.ID,
		"seats", in.Seats, "students", in.Students)

	to := payment.Email
	if to == "" {
		to = payment.UserEmail
	}
	utils.SendAsync(w.mailer, w.logger,
		utils.EnrollmentReceiptEmail(to, payment.Name, payment.InstructorName, payment.TransactionID, payment.Price))

	return res, nil
}

func (w *Workflow) paymentFrom(in Checkout) *models.Payment {
	date := in.Date
	if date.IsZero() {
		date = w.now()
	}
	return &models.Payment{
		UserEmail:      in.UserEmail,
		ClassID:        in.ClassID,
		ApprovedID:     in.ApprovedID,
		SelectedID:     in.SelectedID,
		Seats:          in.Seats,
		Students:       in.Students,
		Price:          in.Price,
		TransactionID:  in.TransactionID,
		Name:           in.Name,
		Image:          in.Image,
		InstructorName: in.InstructorName,
		Email:          in.Email,
		Date:           date.UTC(),
	}
}

func enrolledFrom(p *models.Payment) *models.EnrolledClass {
	return &models.EnrolledClass{
		PaymentID:      p.ID,
		ClassID:        p.ClassID,
		UserEmail:      p.UserEmail,
		Email:          p.Email,
		Name:           p.Name,
		Image:          p.Image,
		InstructorName: p.InstructorName,
		Date:           p.Date,
	}
}

func counters(in Checkout) map[string]interface{} {
	return map[string]interface{}{
		"seats":    in.Seats,
		"students": in.Students,
	}
}

func (w *Workflow) completeTransactional(ctx context.Context, in Checkout, payment *models.Payment) (*Result, error) {
	res := &Result{}
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var class models.PublishedClass
		if err := tx.Where("id = ?", in.ClassID).First(&class).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClassNotFound
			}
			return &StepError{Step: StepClass, Err: err}
		}
		if in.ExpectedVersion != nil && *in.ExpectedVersion != class.Version {
			return ErrConcurrentUpdate
		}

		var submissions int64
		if err := tx.Model(&models.ClassSubmission{}).Where("id = ?", in.ApprovedID).Count(&submissions).Error; err != nil {
			return &StepError{Step: StepSubmission, Err: err}
		}
		if submissions == 0 {
			return ErrSubmissionNotFound
		}

		if err := tx.Create(payment).Error; err != nil {
			return &StepError{Step: StepPayment, Err: err}
		}
		enrolled := enrolledFrom(payment)
		if err := tx.Create(enrolled).Error; err != nil {
			return &StepError{Step: StepEnrolled, Err: err}
		}

		del := tx.Where("id = ? AND user_email = ?", in.SelectedID, in.UserEmail).Delete(&models.SelectedClass{})
		if del.Error != nil {
			return &StepError{Step: StepSelection, Err: del.Error}
		}
		if del.RowsAffected == 0 {
			return ErrSelectionNotFound
		}

		updates := counters(in)
		updates["version"] = class.Version + 1
		upd := tx.Model(&models.PublishedClass{}).
			Where("id = ? AND version = ?", class.ID, class.Version).
			Updates(updates)
		if upd.Error != nil {
			return &StepError{Step: StepClass, Err: upd.Error}
		}
		if upd.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}

		sub := tx.Model(&models.ClassSubmission{}).Where("id = ?", in.ApprovedID).Updates(counters(in))
		if sub.Error != nil {
			return &StepError{Step: StepSubmission, Err: sub.Error}
		}

		res.InsertResult = &models.InsertResult{InsertedID: payment.ID}
		res.EnrolledResult = &models.InsertResult{InsertedID: enrolled.ID}
		res.DeleteResult = &models.DeleteResult{DeletedCount: del.RowsAffected}
		classResult := models.Updated(upd.RowsAffected)
		res.ClassResult = &classResult
		approvedResult := models.Updated(sub.RowsAffected)
		res.ApprovedResult = &approvedResult
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// completeSequential issues each write on its own. Missing rows are reported through the
// zero counts rather than as errors.
func (w *Workflow) completeSequential(ctx context.Context, in Checkout, payment *models.Payment) (*Result, error) {
	db := w.db.WithContext(ctx)
	res := &Result{}

	if err := db.Create(payment).Error; err != nil {
		return res, &StepError{Step: StepPayment, Err: err}
	}
	res.InsertResult = &models.InsertResult{InsertedID: payment.ID}

	enrolled := enrolledFrom(payment)
	if err := db.Create(enrolled).Error; err != nil {
		return res, &StepError{Step: StepEnrolled, Err: err}
	}
	res.EnrolledResult = &models.InsertResult{InsertedID: enrolled.ID}

	del := db.Where("id = ? AND user_email = ?", in.SelectedID, in.UserEmail).Delete(&models.SelectedClass{})
	if del.Error != nil {
		return res, &StepError{Step: StepSelection, Err: del.Error}
	}
	res.DeleteResult = &models.DeleteResult{DeletedCount: del.RowsAffected}

	updates := counters(in)
	updates["version"] = gorm.Expr("version + 1")
	upd := db.Model(&models.PublishedClass{}).Where("id = ?", in.ClassID).Updates(updates)
	if upd.Error != nil {
		return res, &StepError{Step: StepClass, Err: upd.Error}
	}
	classResult := models.Updated(upd.RowsAffected)
	res.ClassResult = &classResult

	sub := db.Model(&models.ClassSubmission{}).Where("id = ?", in.ApprovedID).Updates(counters(in))
	if sub.Error != nil {
		return res, &StepError{Step: StepSubmission, Err: sub.Error}
	}
	approvedResult := models.Updated(sub.RowsAffected)
	res.ApprovedResult = &approvedResult

	return res, nil
}

package models

import "time"

// Payment is written once per completed checkout and never modified.
type Payment struct {
	Base
	UserEmail      string    `json:"userEmail" gorm:"index;size:255;not null"`
	ClassID        string    `json:"classId" gorm:"size:36"`
	ApprovedID     string    `json:"approvedId" gorm:"size:36"`
	SelectedID     string    `json:"selectedId" gorm:"size:36"`
	Seats          int       `json:"seats"`
	Students       int       `json:"students"`
	Price          float64   `json:"price"`
	TransactionID  string    `json:"transactionId"`
	Name           string    `json:"name"`
	Image          string    `json:"image"`
	InstructorName string    `json:"instructorName"`
	Email          string    `json:"email"`
	Date           time.Time `json:"date" gorm:"index"`
}

// EnrolledClass is the durable enrollment record derived from a Payment.
type EnrolledClass struct {
	Base
	PaymentID      string    `json:"paymentId" gorm:"uniqueIndex;size:36"`
	ClassID        string    `json:"classId" gorm:"size:36"`
	UserEmail      string    `json:"userEmail" gorm:"index;size:255;not null"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Image          string    `json:"image"`
	InstructorName string    `json:"instructorName"`
	Date           time.Time `json:"date"`
}

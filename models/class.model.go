package models

import "gorm.io/datatypes"

type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusDenied   SubmissionStatus = "denied"
)

// ClassSubmission is an instructor-authored class awaiting admin review.
type ClassSubmission struct {
	Base
	InstructorEmail string            `json:"instructorEmail" gorm:"index;size:255"`
	InstructorName  string            `json:"instructorName"`
	Name            string            `json:"name"`
	Image           string            `json:"image"`
	Price           float64           `json:"price"`
	Seats           int               `json:"seats"`
	Students        int               `json:"students"`
	Status          SubmissionStatus  `json:"status" gorm:"size:20;default:'pending'"`
	Feedback        string            `json:"feedback,omitempty"`
	Details         datatypes.JSONMap `json:"details,omitempty"`
}

func (ClassSubmission) TableName() string { return "new_classes" }

// PublishedClass is an approved submission open for enrollment.
type PublishedClass struct {
	Base
	SubmissionID    string            `json:"submissionId,omitempty" gorm:"index;size:36"`
	InstructorEmail string            `json:"instructorEmail"`
	InstructorName  string            `json:"instructorName"`
	Name            string            `json:"name"`
	Image           string            `json:"image"`
	Price           float64           `json:"price"`
	Seats           int               `json:"seats"`
	Students        int               `json:"students"`
	Version         int               `json:"version" gorm:"not null;default:0"`
	Details         datatypes.JSONMap `json:"details,omitempty"`
}

func (PublishedClass) TableName() string { return "classes" }

// SelectedClass is a student's intent to enroll, removed once paid for.
type SelectedClass struct {
	Base
	UserEmail      string  `json:"userEmail" gorm:"index;size:255;not null"`
	ClassID        string  `json:"classId" gorm:"size:36"`
	ApprovedID     string  `json:"approvedId,omitempty" gorm:"size:36"`
	Name           string  `json:"name"`
	Image          string  `json:"image"`
	InstructorName string  `json:"instructorName"`
	Price          float64 `json:"price"`
	Seats          int     `json:"seats"`
	Students       int     `json:"students"`
}

func (SelectedClass) TableName() string { return "student_classes" }

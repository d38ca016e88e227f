package models

import "gorm.io/datatypes"

// Instructor is an entry in the public instructor directory.
type Instructor struct {
	Base
	Name    string            `json:"name"`
	Email   string            `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Photo   string            `json:"photo"`
	Details datatypes.JSONMap `json:"details,omitempty"`
}

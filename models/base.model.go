package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the document-style string id and timestamps shared by every record.
type Base struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not supply one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// IsValidID reports whether id looks like a record id issued by BeforeCreate.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

package models

type Role string

const (
	RoleNone       Role = "none"
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

type User struct {
	Base
	Name  string `json:"name" gorm:"default:''"`
	Email string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Photo string `json:"photo" gorm:"default:''"`
	Role  Role   `json:"role" gorm:"size:20;default:'student'"`
}

// RoleOf returns the stored role, treating a missing user as RoleNone.
func RoleOf(u *User) Role {
	if u == nil || u.Role == "" {
		return RoleNone
	}
	return u.Role
}

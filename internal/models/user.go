package models

import "time"

// Admin principals. Role is one of the RoleX constants; permissions are
// derived from the role name by the policy package.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"unique;not null;index" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	Role      string    `gorm:"not null;default:'editor'" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

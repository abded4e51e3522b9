package models

import "time"

// Portal clients register themselves and wait for admin approval.
// Either email or phone may identify them; both are optional but at
// least one must be present (enforced by the handler).
type ClientUser struct {
	ID              uint                    `gorm:"primaryKey" json:"id"`
	Name            string                  `gorm:"not null" json:"name"`
	Email           string                  `gorm:"index" json:"email,omitempty"`
	Phone           string                  `gorm:"index" json:"phone,omitempty"`
	Password        string                  `gorm:"not null" json:"-"` // bcrypt hash
	PasswordHistory []ClientPasswordHistory `gorm:"foreignKey:ClientUserID;constraint:OnDelete:CASCADE" json:"-"`
	IsApproved      bool                    `gorm:"index" json:"isApproved"`
	ApprovedByID    uint                    `json:"-"`
	ApprovedBy      *User                   `gorm:"foreignKey:ApprovedByID" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time              `json:"approvedAt,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// ClientPasswordHistory keeps the last few password hashes so the
// forgot-password flow can verify a previously used password.
type ClientPasswordHistory struct {
	ID           uint   `gorm:"primaryKey"`
	ClientUserID uint   `gorm:"not null;index"`
	Hash         string `gorm:"not null"`
	CreatedAt    time.Time
}

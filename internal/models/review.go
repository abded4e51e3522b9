package models

import "time"

// Review is submitted by an authenticated portal client and hidden from
// the public site until an admin approves it.
type Review struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	ClientUserID    uint        `gorm:"not null;index" json:"-"`
	ClientUser      *ClientUser `gorm:"foreignKey:ClientUserID" json:"clientUser,omitempty"`
	ClientName      string      `gorm:"not null" json:"clientName"`
	ProjectID       uint        `gorm:"index" json:"-"` // optional link to a portfolio project
	Project         *Project    `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	ProjectName     string      `json:"projectName,omitempty"`
	Rating          int         `gorm:"not null" json:"rating"` // 1..5
	ReviewText      string      `gorm:"type:text;not null" json:"reviewText"`
	IsApproved      bool        `gorm:"index" json:"isApproved"`
	ApprovedByID    uint        `json:"-"`
	ApprovedBy      *User       `gorm:"foreignKey:ApprovedByID" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time  `json:"approvedAt,omitempty"`
	RejectionReason string      `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

package models

import "time"

// Quote is a public quote request submitted from the site contact form.
// Reference is a short opaque code quoted back to the requester.
type Quote struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Reference   string    `gorm:"uniqueIndex;not null" json:"reference"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `gorm:"not null" json:"email"`
	Phone       string    `json:"phone,omitempty"`
	ProjectType string    `json:"projectType,omitempty"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Budget      string    `json:"budget,omitempty"`
	Status      string    `gorm:"not null;index;default:'new'" json:"status"` // new, in-progress, closed
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	QuoteNew        = "new"
	QuoteInProgress = "in-progress"
	QuoteClosed     = "closed"
)

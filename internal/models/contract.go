package models

import (
	"time"

	"github.com/deployprime/agency-backend/internal/capability"
)

// Contract lifecycle states. Transitions only move forward:
// pending -> viewed -> signed, with expired reachable from pending or
// viewed. A signed contract never expires. completed is set by an
// operator outside this backend.
const (
	ContractPending   = "pending"
	ContractViewed    = "viewed"
	ContractSigned    = "signed"
	ContractCompleted = "completed"
	ContractExpired   = "expired"
)

// Tranche is one named portion of the payment schedule. Amount is
// derived from Percentage and the contract's total price.
type Tranche struct {
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

// PaymentSchedule splits the total price into advance/mid/final
// tranches. Percentages must sum to exactly 100.
type PaymentSchedule struct {
	Advance Tranche `gorm:"embedded;embeddedPrefix:advance_" json:"advance"`
	Mid     Tranche `gorm:"embedded;embeddedPrefix:mid_" json:"mid"`
	Final   Tranche `gorm:"embedded;embeddedPrefix:final_" json:"final"`
}

// Signature is the client's binding artifact, written exactly once at
// signing time. SignedAt and IPAddress are server-assigned.
type Signature struct {
	Type      string     `json:"type,omitempty"` // drawn or uploaded
	Data      string     `gorm:"type:text" json:"data,omitempty"`
	SignedAt  *time.Time `json:"signedAt,omitempty"`
	IPAddress string     `json:"ipAddress,omitempty"`
}

const (
	SignatureDrawn    = "drawn"
	SignatureUploaded = "uploaded"
)

// Contract is created by an admin and later viewed/signed by an
// unauthenticated client holding the shareable capability token.
// The token is the only authorization for client-facing transitions,
// so it is excluded from every JSON rendering of the record.
type Contract struct {
	ID                 uint                  `gorm:"primaryKey" json:"id"`
	ShareableToken     capability.Capability `gorm:"uniqueIndex;not null" json:"-"`
	ProjectName        string                `gorm:"not null" json:"projectName"`
	ProjectDescription string                `gorm:"type:text;not null" json:"projectDescription"`
	TotalPrice         float64               `gorm:"not null" json:"totalPrice"`
	Currency           string                `gorm:"not null;default:'USD'" json:"currency"`
	Duration           int                   `gorm:"not null" json:"duration"`
	DurationUnit       string                `gorm:"not null;default:'days'" json:"durationUnit"` // days, weeks, months
	PaymentSchedule    PaymentSchedule       `gorm:"embedded;embeddedPrefix:schedule_" json:"paymentSchedule"`
	ContractTerms      string                `gorm:"type:text;not null" json:"contractTerms"`
	// SignedTerms snapshots ContractTerms at signing time so later admin
	// edits cannot change what the client agreed to.
	SignedTerms string `gorm:"type:text" json:"signedTerms,omitempty"`

	ClientName  string    `json:"clientName,omitempty"`
	ClientEmail string    `gorm:"index" json:"clientEmail,omitempty"`
	ClientPhone string    `json:"clientPhone,omitempty"`
	Status      string    `gorm:"not null;index;default:'pending'" json:"status"`
	Signature   Signature `gorm:"embedded;embeddedPrefix:signature_" json:"signature"`

	ExpiresAt   time.Time  `gorm:"not null;index" json:"expiresAt"`
	ViewedAt    *time.Time `json:"viewedAt,omitempty"`
	CreatedByID uint       `json:"-"`
	CreatedBy   *User      `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

const (
	DurationDays   = "days"
	DurationWeeks  = "weeks"
	DurationMonths = "months"
)

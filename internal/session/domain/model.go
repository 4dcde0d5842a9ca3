package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Type string

const (
	TypeLive       Type = "live"
	TypeRecorded   Type = "recorded"
	TypeEvaluation Type = "evaluation"
)

func (t Type) Valid() bool {
	switch t {
	case TypeLive, TypeRecorded, TypeEvaluation:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending       Status = "pending"
	StatusPendingReview Status = "pending_review"
	StatusPaid          Status = "paid"
)

// Session is one mentoring engagement. Status transitions belong to this
// store; the payout engine reads sessions but never mutates them.
type Session struct {
	ID snowflake.ID `gorm:"primaryKey"`

	MentorID   string `gorm:"type:text;not null;index"`
	MentorName string `gorm:"type:text;not null"`

	SessionDate time.Time `gorm:"not null"`
	SessionType Type      `gorm:"type:text;not null"`

	DurationMinutes int     `gorm:"not null"`
	RatePerHour     float64 `gorm:"not null"`

	// Payout, when set, is an explicitly entered gross amount that
	// overrides duration x rate.
	Payout *float64

	Status Status `gorm:"type:text;not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Session) TableName() string { return "sessions" }

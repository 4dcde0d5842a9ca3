package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateRequest struct {
	MentorID        string    `json:"mentor_id"`
	MentorName      string    `json:"mentor_name"`
	SessionDate     time.Time `json:"session_date"`
	SessionType     Type      `json:"session_type"`
	DurationMinutes int       `json:"duration_minutes"`
	RatePerHour     float64   `json:"rate_per_hour"`
	Payout          *float64  `json:"payout,omitempty"`
}

type ListFilter struct {
	MentorID string
	Statuses []Status
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Session, error)
	Get(ctx context.Context, id snowflake.ID) (*Session, error)
	List(ctx context.Context, filter ListFilter) ([]Session, error)
	Delete(ctx context.Context, id snowflake.ID) error
	// MarkPaid transitions the given sessions to paid. Used by the payout
	// orchestrator after a successful finalize.
	MarkPaid(ctx context.Context, ids []snowflake.ID) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, session *Session) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Session, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Session, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	UpdateStatus(ctx context.Context, db *gorm.DB, ids []snowflake.ID, status Status) error
}

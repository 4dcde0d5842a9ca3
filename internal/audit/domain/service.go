package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type ListRequest struct {
	Action     string
	TargetType string
	TargetID   string
	ActorType  string
	StartAt    *time.Time
	EndAt      *time.Time
	Limit      int
}

type Service interface {
	// Record writes an audit entry. Failures are logged, never propagated;
	// callers must not gate their own outcome on the audit trail.
	Record(ctx context.Context, entry Entry)
	List(ctx context.Context, req ListRequest) ([]AuditLog, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, req ListRequest) ([]AuditLog, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)

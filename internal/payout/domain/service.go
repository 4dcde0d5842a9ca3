package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/mentorpay/mentorpay/internal/tax/domain"
	webhookdomain "github.com/mentorpay/mentorpay/internal/webhook/domain"
	"gorm.io/gorm"
)

type SetAdjustmentRequest struct {
	SessionID snowflake.ID `json:"session_id"`
	Amount    float64      `json:"amount"`
	Reason    string       `json:"reason"`
}

// FinalizeResult reports a completed finalize: the locked run, the final
// aggregate, and the per-endpoint webhook delivery outcomes. Delivery
// failures are data here, never errors.
type FinalizeResult struct {
	Run       Run                             `json:"run"`
	Aggregate AggregateResult                 `json:"aggregate"`
	Attempts  []webhookdomain.DeliveryAttempt `json:"webhook_attempts"`
}

type Service interface {
	CreateRun(ctx context.Context) (*Run, error)
	GetRun(ctx context.Context, id snowflake.ID) (*Run, error)
	ListRuns(ctx context.Context) ([]Run, error)

	// UpdateTaxConfig replaces the run's tax configuration copy. Any edit
	// invalidates a simulation: the run returns to Draft.
	UpdateTaxConfig(ctx context.Context, runID snowflake.ID, cfg taxdomain.Config) (*Run, error)
	// SetAdjustment upserts the manual adjustment for one session within
	// the run and returns the run to Draft.
	SetAdjustment(ctx context.Context, runID snowflake.ID, req SetAdjustmentRequest) (*Run, error)

	// Simulate recomputes the aggregate without side effects and moves the
	// run to Simulated.
	Simulate(ctx context.Context, runID snowflake.ID) (*AggregateResult, error)
	// Finalize recomputes once more, dispatches webhooks exactly once,
	// records the audit trail, and locks the run. A second call fails with
	// ErrAlreadyFinalized before any dispatch.
	Finalize(ctx context.Context, runID snowflake.ID) (*FinalizeResult, error)

	CurrentBreakdown(ctx context.Context, runID snowflake.ID) ([]Breakdown, error)
	State(ctx context.Context, runID snowflake.ID) (RunStatus, error)
}

type Repository interface {
	InsertRun(ctx context.Context, db *gorm.DB, run *Run) error
	FindRun(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Run, error)
	ListRuns(ctx context.Context, db *gorm.DB) ([]Run, error)
	UpdateRun(ctx context.Context, db *gorm.DB, run *Run) error
	// MarkFinalized locks the run iff it is not already finalized and
	// reports whether this call won the transition.
	MarkFinalized(ctx context.Context, db *gorm.DB, run *Run) (bool, error)

	UpsertAdjustment(ctx context.Context, db *gorm.DB, adj *Adjustment) error
	ListAdjustments(ctx context.Context, db *gorm.DB, runID snowflake.ID) ([]Adjustment, error)
}

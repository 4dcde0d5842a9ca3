package domain

import (
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
)

// GrossKind tags how the gross amount of a session is determined.
type GrossKind string

const (
	// GrossKindExplicit uses a directly entered payout amount.
	GrossKindExplicit GrossKind = "explicit"
	// GrossKindComputed derives gross from duration x hourly rate.
	GrossKindComputed GrossKind = "computed"
)

// GrossSource is the calculation input for one session's gross amount.
type GrossSource struct {
	Kind            GrossKind
	Gross           float64
	DurationMinutes int
	RatePerHour     float64
}

func ExplicitGross(amount float64) GrossSource {
	return GrossSource{Kind: GrossKindExplicit, Gross: amount}
}

func ComputedGross(durationMinutes int, ratePerHour float64) GrossSource {
	return GrossSource{
		Kind:            GrossKindComputed,
		DurationMinutes: durationMinutes,
		RatePerHour:     ratePerHour,
	}
}

// Breakdown is the derived result of one payout calculation. Amounts are
// kept unrounded; Rounded produces the 2-decimal display form. Summation
// across a run always happens over the unrounded values.
type Breakdown struct {
	SessionID  snowflake.ID `json:"session_id"`
	MentorID   string       `json:"mentor_id"`
	MentorName string       `json:"mentor_name"`

	Gross       float64 `json:"gross"`
	PlatformFee float64 `json:"platform_fee"`
	GST         float64 `json:"gst"`
	TDS         float64 `json:"tds"`
	Adjustment  float64 `json:"adjustment"`
	Net         float64 `json:"net"`
}

func (b Breakdown) Rounded() Breakdown {
	b.Gross = Round2(b.Gross)
	b.PlatformFee = Round2(b.PlatformFee)
	b.GST = Round2(b.GST)
	b.TDS = Round2(b.TDS)
	b.Adjustment = Round2(b.Adjustment)
	b.Net = Round2(b.Net)
	return b
}

// Round2 rounds a monetary amount to 2 decimal places for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AggregateResult summarizes one calculation pass over a session set. It is
// recomputed on demand and never reused after the tax config or adjustments
// change.
type AggregateResult struct {
	TotalNet            float64     `json:"total_net"`
	TotalAdjustments    float64     `json:"total_adjustments"`
	TotalTax            float64     `json:"total_tax"`
	AffectedMentorCount int         `json:"affected_mentor_count"`
	SessionCount        int         `json:"session_count"`
	PerSession          []Breakdown `json:"per_session"`
}

type RunStatus string

const (
	RunStatusDraft     RunStatus = "draft"
	RunStatusSimulated RunStatus = "simulated"
	RunStatusFinalized RunStatus = "finalized"
)

// Run is one payout run: Draft -> Simulated -> Finalized. Finalized is
// terminal. The run owns its tax configuration copy so edits are explicit
// state transitions rather than ambient shared state.
type Run struct {
	ID     snowflake.ID `gorm:"primaryKey"`
	Status RunStatus    `gorm:"type:text;not null;index"`

	PlatformFeePercent float64 `gorm:"not null"`
	GSTPercent         float64 `gorm:"column:gst_percent;not null"`
	TDSPercent         float64 `gorm:"column:tds_percent;not null"`

	// Totals are written once, at finalize.
	TotalNet         float64
	TotalAdjustments float64
	TotalTax         float64
	SessionCount     int
	MentorCount      int

	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	FinalizedAt *time.Time
}

func (Run) TableName() string { return "payout_runs" }

// Adjustment is an admin-entered signed correction for one session within a
// run. At most one per (run, session).
type Adjustment struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	RunID     snowflake.ID `gorm:"not null;uniqueIndex:idx_run_session"`
	SessionID snowflake.ID `gorm:"not null;uniqueIndex:idx_run_session"`

	Amount float64 `gorm:"not null"`
	Reason string  `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Adjustment) TableName() string { return "payout_adjustments" }

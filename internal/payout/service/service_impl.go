package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/mentorpay/mentorpay/internal/audit/domain"
	"github.com/mentorpay/mentorpay/internal/clock"
	"github.com/mentorpay/mentorpay/internal/observability/metrics"
	"github.com/mentorpay/mentorpay/internal/payout/domain"
	sessiondomain "github.com/mentorpay/mentorpay/internal/session/domain"
	taxdomain "github.com/mentorpay/mentorpay/internal/tax/domain"
	webhookdomain "github.com/mentorpay/mentorpay/internal/webhook/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Metrics    *metrics.Metrics
	Repo       domain.Repository
	Sessions   sessiondomain.Service
	Tax        taxdomain.Service
	Endpoints  webhookdomain.Service
	Dispatcher webhookdomain.Dispatcher
	Audit      auditdomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	metrics    *metrics.Metrics
	repo       domain.Repository
	sessions   sessiondomain.Service
	tax        taxdomain.Service
	endpoints  webhookdomain.Service
	dispatcher webhookdomain.Dispatcher
	audit      auditdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payout.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		metrics:    p.Metrics,
		repo:       p.Repo,
		sessions:   p.Sessions,
		tax:        p.Tax,
		endpoints:  p.Endpoints,
		dispatcher: p.Dispatcher,
		audit:      p.Audit,
	}
}

func (s *Service) CreateRun(ctx context.Context) (*domain.Run, error) {
	cfg, err := s.tax.Current(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	run := &domain.Run{
		ID:                 s.genID.Generate(),
		Status:             domain.RunStatusDraft,
		PlatformFeePercent: cfg.PlatformFeePercent,
		GSTPercent:         cfg.GSTPercent,
		TDSPercent:         cfg.TDSPercent,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.InsertRun(ctx, s.db, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Service) GetRun(ctx context.Context, id snowflake.ID) (*domain.Run, error) {
	return s.findRun(ctx, id)
}

func (s *Service) ListRuns(ctx context.Context) ([]domain.Run, error) {
	return s.repo.ListRuns(ctx, s.db)
}

func (s *Service) UpdateTaxConfig(ctx context.Context, runID snowflake.ID, cfg taxdomain.Config) (*domain.Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	run, err := s.findRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status == domain.RunStatusFinalized {
		return nil, domain.ErrAlreadyFinalized
	}

	run.PlatformFeePercent = cfg.PlatformFeePercent
	run.GSTPercent = cfg.GSTPercent
	run.TDSPercent = cfg.TDSPercent
	// Any edit invalidates a simulation.
	run.Status = domain.RunStatusDraft
	run.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateRun(ctx, s.db, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Service) SetAdjustment(ctx context.Context, runID snowflake.ID, req domain.SetAdjustmentRequest) (*domain.Run, error) {
	run, err := s.findRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status == domain.RunStatusFinalized {
		return nil, domain.ErrAlreadyFinalized
	}

	if _, err := s.sessions.Get(ctx, req.SessionID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	adj := &domain.Adjustment{
		ID:        s.genID.Generate(),
		RunID:     runID,
		SessionID: req.SessionID,
		Amount:    req.Amount,
		Reason:    req.Reason,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertAdjustment(ctx, s.db, adj); err != nil {
		return nil, err
	}

	run.Status = domain.RunStatusDraft
	run.UpdatedAt = now
	if err := s.repo.UpdateRun(ctx, s.db, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Service) Simulate(ctx context.Context, runID snowflake.ID) (*domain.AggregateResult, error) {
	run, err := s.findRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status == domain.RunStatusFinalized {
		return nil, domain.ErrAlreadyFinalized
	}

	aggregate, _, err := s.compute(ctx, run)
	if err != nil {
		return nil, err
	}

	run.Status = domain.RunStatusSimulated
	run.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateRun(ctx, s.db, run); err != nil {
		return nil, err
	}

	s.metrics.PayoutSimulations.Inc()
	return &aggregate, nil
}

func (s *Service) Finalize(ctx context.Context, runID snowflake.ID) (*domain.FinalizeResult, error) {
	run, err := s.findRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status == domain.RunStatusFinalized {
		return nil, domain.ErrAlreadyFinalized
	}

	// Recompute regardless of any earlier simulation; sessions or inputs
	// may have drifted since.
	aggregate, sessionIDs, err := s.compute(ctx, run)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	run.TotalNet = aggregate.TotalNet
	run.TotalAdjustments = aggregate.TotalAdjustments
	run.TotalTax = aggregate.TotalTax
	run.SessionCount = aggregate.SessionCount
	run.MentorCount = aggregate.AffectedMentorCount
	run.UpdatedAt = now
	run.FinalizedAt = &now

	// The status flip is the idempotence gate: losing it means another
	// finalize already dispatched, and we must not dispatch again.
	won, err := s.repo.MarkFinalized(ctx, s.db, run)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, domain.ErrAlreadyFinalized
	}
	run.Status = domain.RunStatusFinalized

	endpoints, err := s.endpoints.ListActive(ctx, webhookdomain.EventPayoutProcessed)
	if err != nil {
		s.log.Error("failed to list webhook endpoints; finalize completes without dispatch", zap.Error(err))
		endpoints = nil
	}

	ids := make([]string, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		ids = append(ids, id.String())
	}
	attempts := s.dispatcher.DispatchPayoutProcessed(ctx, endpoints, webhookdomain.PayoutProcessedEvent{
		PayoutDate:       now,
		TotalAmount:      aggregate.TotalNet,
		SessionCount:     aggregate.SessionCount,
		MentorCount:      aggregate.AffectedMentorCount,
		SessionIDs:       ids,
		AdjustmentsTotal: aggregate.TotalAdjustments,
	})

	if err := s.sessions.MarkPaid(ctx, sessionIDs); err != nil {
		s.log.Error("failed to mark sessions paid", zap.Error(err))
	}

	failed := 0
	for _, attempt := range attempts {
		if !attempt.Success {
			failed++
		}
	}
	s.audit.Record(ctx, auditdomain.Entry{
		Action:     "payout_run.finalized",
		TargetType: "payout_run",
		TargetID:   run.ID.String(),
		Metadata: map[string]any{
			"total_net":      aggregate.TotalNet,
			"session_count":  aggregate.SessionCount,
			"mentor_count":   aggregate.AffectedMentorCount,
			"webhook_total":  len(attempts),
			"webhook_failed": failed,
		},
	})
	s.metrics.PayoutFinalizations.Inc()

	return &domain.FinalizeResult{
		Run:       *run,
		Aggregate: aggregate,
		Attempts:  attempts,
	}, nil
}

func (s *Service) CurrentBreakdown(ctx context.Context, runID snowflake.ID) ([]domain.Breakdown, error) {
	run, err := s.findRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	aggregate, _, err := s.compute(ctx, run)
	if err != nil {
		return nil, err
	}
	return aggregate.PerSession, nil
}

func (s *Service) State(ctx context.Context, runID snowflake.ID) (domain.RunStatus, error) {
	run, err := s.findRun(ctx, runID)
	if err != nil {
		return "", err
	}
	return run.Status, nil
}

func (s *Service) findRun(ctx context.Context, id snowflake.ID) (*domain.Run, error) {
	run, err := s.repo.FindRun(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

// compute performs one full calculation pass over the run's target sessions
// with the run's own tax configuration copy. No state is mutated.
func (s *Service) compute(ctx context.Context, run *domain.Run) (domain.AggregateResult, []snowflake.ID, error) {
	cfg := taxdomain.Config{
		PlatformFeePercent: run.PlatformFeePercent,
		GSTPercent:         run.GSTPercent,
		TDSPercent:         run.TDSPercent,
	}

	sessions, err := s.sessions.List(ctx, sessiondomain.ListFilter{
		Statuses: []sessiondomain.Status{
			sessiondomain.StatusPending,
			sessiondomain.StatusPendingReview,
		},
	})
	if err != nil {
		return domain.AggregateResult{}, nil, err
	}

	adjustments, err := s.repo.ListAdjustments(ctx, s.db, run.ID)
	if err != nil {
		return domain.AggregateResult{}, nil, err
	}
	adjustmentBySession := make(map[snowflake.ID]float64, len(adjustments))
	for _, adj := range adjustments {
		adjustmentBySession[adj.SessionID] = adj.Amount
	}

	breakdowns := make([]domain.Breakdown, 0, len(sessions))
	sessionIDs := make([]snowflake.ID, 0, len(sessions))
	for _, session := range sessions {
		src := domain.ComputedGross(session.DurationMinutes, session.RatePerHour)
		if session.Payout != nil {
			src = domain.ExplicitGross(*session.Payout)
		}

		breakdown, err := Calculate(src, cfg, adjustmentBySession[session.ID])
		if err != nil {
			return domain.AggregateResult{}, nil, fmt.Errorf("session %s: %w", session.ID, err)
		}
		breakdown.SessionID = session.ID
		breakdown.MentorID = session.MentorID
		breakdown.MentorName = session.MentorName
		breakdowns = append(breakdowns, breakdown)
		sessionIDs = append(sessionIDs, session.ID)
	}

	return Aggregate(breakdowns), sessionIDs, nil
}

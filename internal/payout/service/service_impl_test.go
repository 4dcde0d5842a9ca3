package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/mentorpay/mentorpay/internal/audit/domain"
	auditrepository "github.com/mentorpay/mentorpay/internal/audit/repository"
	auditservice "github.com/mentorpay/mentorpay/internal/audit/service"
	"github.com/mentorpay/mentorpay/internal/clock"
	"github.com/mentorpay/mentorpay/internal/config"
	"github.com/mentorpay/mentorpay/internal/observability/metrics"
	"github.com/mentorpay/mentorpay/internal/payout/domain"
	payoutrepository "github.com/mentorpay/mentorpay/internal/payout/repository"
	sessiondomain "github.com/mentorpay/mentorpay/internal/session/domain"
	sessionrepository "github.com/mentorpay/mentorpay/internal/session/repository"
	sessionservice "github.com/mentorpay/mentorpay/internal/session/service"
	taxdomain "github.com/mentorpay/mentorpay/internal/tax/domain"
	taxrepository "github.com/mentorpay/mentorpay/internal/tax/repository"
	taxservice "github.com/mentorpay/mentorpay/internal/tax/service"
	webhookdomain "github.com/mentorpay/mentorpay/internal/webhook/domain"
	webhookrepository "github.com/mentorpay/mentorpay/internal/webhook/repository"
	webhookservice "github.com/mentorpay/mentorpay/internal/webhook/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stubDispatcher counts dispatches instead of doing HTTP.
type stubDispatcher struct {
	dispatches atomic.Int64
	lastEvent  webhookdomain.PayoutProcessedEvent
}

func (d *stubDispatcher) DispatchPayoutProcessed(ctx context.Context, endpoints []webhookdomain.Endpoint, event webhookdomain.PayoutProcessedEvent) []webhookdomain.DeliveryAttempt {
	d.dispatches.Add(1)
	d.lastEvent = event
	attempts := make([]webhookdomain.DeliveryAttempt, len(endpoints))
	for i, endpoint := range endpoints {
		attempts[i] = webhookdomain.DeliveryAttempt{EndpointID: endpoint.ID, Event: webhookdomain.EventPayoutProcessed, Success: true}
	}
	return attempts
}

func (d *stubDispatcher) Deliver(ctx context.Context, endpoint webhookdomain.Endpoint, event string, data any) webhookdomain.DeliveryAttempt {
	return webhookdomain.DeliveryAttempt{EndpointID: endpoint.ID, Event: event, Success: true}
}

type fixture struct {
	db         *gorm.DB
	clock      *clock.FakeClock
	payouts    domain.Service
	sessions   sessiondomain.Service
	tax        taxdomain.Service
	endpoints  webhookdomain.Service
	dispatcher *stubDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&sessiondomain.Session{},
		&taxdomain.Setting{},
		&domain.Run{},
		&domain.Adjustment{},
		&webhookdomain.Endpoint{},
		&webhookdomain.DeliveryAttempt{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))
	dispatcher := &stubDispatcher{}

	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Repo: auditrepository.Provide(),
	})
	sessionSvc := sessionservice.NewService(sessionservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Cfg:  config.Config{MinRatePerHour: 500},
		Repo: sessionrepository.Provide(),
	})
	taxSvc := taxservice.NewService(taxservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Repo: taxrepository.Provide(), Audit: auditSvc,
	})
	webhookSvc := webhookservice.NewService(webhookservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Repo: webhookrepository.Provide(), Dispatcher: dispatcher,
	})
	payoutSvc := NewService(Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Metrics:    metrics.New(),
		Repo:       payoutrepository.Provide(),
		Sessions:   sessionSvc,
		Tax:        taxSvc,
		Endpoints:  webhookSvc,
		Dispatcher: dispatcher,
		Audit:      auditSvc,
	})

	return &fixture{
		db:         db,
		clock:      fake,
		payouts:    payoutSvc,
		sessions:   sessionSvc,
		tax:        taxSvc,
		endpoints:  webhookSvc,
		dispatcher: dispatcher,
	}
}

func (f *fixture) addSession(t *testing.T, mentorID string, minutes int, rate float64) *sessiondomain.Session {
	t.Helper()
	sess, err := f.sessions.Create(context.Background(), sessiondomain.CreateRequest{
		MentorID:        mentorID,
		MentorName:      "Mentor " + mentorID,
		SessionDate:     f.clock.Now().Add(-24 * time.Hour),
		SessionType:     sessiondomain.TypeLive,
		DurationMinutes: minutes,
		RatePerHour:     rate,
	})
	require.NoError(t, err)
	return sess
}

func TestCreateRunSeedsCurrentTaxConfig(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	run, err := f.payouts.CreateRun(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusDraft, run.Status)
	assert.InDelta(t, 10, run.PlatformFeePercent, 1e-9)
	assert.InDelta(t, 18, run.GSTPercent, 1e-9)
	assert.InDelta(t, 5, run.TDSPercent, 1e-9)

	// A later global change does not touch the existing run's copy.
	_, err = f.tax.Update(ctx, taxdomain.Config{PlatformFeePercent: 20, GSTPercent: 18, TDSPercent: 5})
	require.NoError(t, err)

	got, err := f.payouts.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10, got.PlatformFeePercent, 1e-9)

	fresh, err := f.payouts.CreateRun(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 20, fresh.PlatformFeePercent, 1e-9)
}

func TestSimulateComputesAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addSession(t, "m1", 60, 4000)
	f.addSession(t, "m2", 30, 2000)

	run, err := f.payouts.CreateRun(ctx)
	require.NoError(t, err)

	result, err := f.payouts.Simulate(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SessionCount)
	assert.Equal(t, 2, result.AffectedMentorCount)
	// 60min@4000 -> 3328 net; 30min@2000 -> 1000 gross -> 832 net.
	assert.InDelta(t, 4160, result.TotalNet, 0.005)

	state, err := f.payouts.State(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusSimulated, state)
}

func TestEditsResetSimulatedToDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess := f.addSession(t, "m1", 60, 4000)
	run, err := f.payouts.CreateRun(ctx)
	require.NoError(t, err)

	_, err = f.payouts.Simulate(ctx, run.ID)
	require.NoError(t, err)

	t.Run("tax config edit", func(t *testing.T) {
		updated, err := f.payouts.UpdateTaxConfig(ctx, run.ID, taxdomain.Config{PlatformFeePercent: 15, GSTPercent: 18, TDSPercent: 5})
		require.NoError(t, err)
		assert.Equal(t, domain.RunStatusDraft, updated.Status)
	})

	_, err = f.payouts.Simulate(ctx, run.ID)
	require.NoError(t, err)

	t.Run("adjustment edit", func(t *testing.T) {
		updated, err := f.payouts.SetAdjustment(ctx, run.ID, domain.SetAdjustmentRequest{
			SessionID: sess.ID,
			Amount:    500,
			Reason:    "bonus",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RunStatusDraft, updated.Status)
	})
}

func TestAdjustmentAppliesToNet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess := f.addSession(t, "m1", 60, 4000)
	run, err := f.payouts.CreateRun(ctx)
	require.NoError(t, err)

	_, err = f.payouts.SetAdjustment(ctx, run.ID, domain.SetAdjustmentRequest{SessionID: sess.ID, Amount: 500, Reason: "bonus"})
	require.NoError(t, err)

	result, err := f.payouts.Simulate(ctx, run.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3828, result.TotalNet, 0.005)
	assert.InDelta(t, 500, result.TotalAdjustments, 1e-9)

	// Re-setting replaces, not stacks.
	_, err = f.payouts.SetAdjustment(ctx, run.ID, domain.SetAdjustmentRequest{SessionID: sess.ID, Amount: -200, Reason: "correction"})
	require.NoError(t, err)

	result, err = f.payouts.Simulate(ctx, run.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3128, result.TotalNet, 0.005)
	assert.InDelta(t, -200, result.TotalAdjustments, 1e-9)
}

func TestSetAdjustmentUnknownSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	run, err := f.payouts.CreateRun(ctx)
	require.NoError(t, err)

	_, err = f.payouts.SetAdjustment(ctx, run.ID, domain.SetAdjustmentRequest{SessionID: 424242, Amount: 10})
	assert.ErrorIs(t, err, sessiondomain.ErrNotFound)
}

func TestFinalize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s1 := f.addSession(t, "m1", 60, 4000)
	s2 := f.addSession(t, "m2", 30, 2000)

	_, err := f.endpoints.Create(ctx, webhookdomain.CreateEndpointRequest{
		Name:   "bank-sync",
		URL:    "https://example.com/hook",
		Secret: "whsec_1",
	})
	require.NoError(t, err)

	run, err := f.payouts.CreateRun(ctx)
	require.NoError(t, err)

	result, err := f.payouts.Finalize(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusFinalized, result.Run.Status)
	require.NotNil(t, result.Run.FinalizedAt)
	assert.InDelta(t, 4160, result.Run.TotalNet, 0.005)
	assert.Equal(t, 2, result.Run.SessionCount)
	assert.Equal(t, 2, result.Run.MentorCount)
	require.Len(t, result.Attempts, 1)
	assert.True(t, result.Attempts[0].Success)

	assert.EqualValues(t, 1, f.dispatcher.dispatches.Load())
	assert.Equal(t, 2, f.dispatcher.lastEvent.SessionCount)
	assert.ElementsMatch(t, []string{s1.ID.String(), s2.ID.String()}, f.dispatcher.lastEvent.SessionIDs)

	// Sessions flip to paid.
	for _, id := range []snowflake.ID{s1.ID, s2.ID} {
		got, err := f.sessions.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, sessiondomain.StatusPaid, got.Status)
	}

	// The trail records the finalize.
	var logs []auditdomain.AuditLog
	require.NoError(t, f.db.Where("action = ?", "payout_run.finalized").Find(&logs).Error)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].TargetID)
	assert.Equal(t, run.ID.String(), *logs[0].TargetID)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addSession(t, "m1", 60, 4000)
	run, err := f.payouts.CreateRun(ctx)
	require.NoError(t, err)

	_, err = f.payouts.Finalize(ctx, run.ID)
	require.NoError(t, err)

	_, err = f.payouts.Finalize(ctx, run.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
	assert.EqualValues(t, 1, f.dispatcher.dispatches.Load())
}

func TestFinalizedRunRejectsEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess := f.addSession(t, "m1", 60, 4000)
	run, err := f.payouts.CreateRun(ctx)
	require.NoError(t, err)

	_, err = f.payouts.Finalize(ctx, run.ID)
	require.NoError(t, err)

	_, err = f.payouts.UpdateTaxConfig(ctx, run.ID, taxdomain.Config{PlatformFeePercent: 1})
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)

	_, err = f.payouts.SetAdjustment(ctx, run.ID, domain.SetAdjustmentRequest{SessionID: sess.ID, Amount: 1})
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)

	_, err = f.payouts.Simulate(ctx, run.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
}

func TestFinalizeSkipsPaidSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addSession(t, "m1", 60, 4000)
	run, err := f.payouts.CreateRun(ctx)
	require.NoError(t, err)
	_, err = f.payouts.Finalize(ctx, run.ID)
	require.NoError(t, err)

	// A second run over the same pool sees nothing left to pay.
	next, err := f.payouts.CreateRun(ctx)
	require.NoError(t, err)
	result, err := f.payouts.Finalize(ctx, next.ID)
	require.NoError(t, err)
	assert.Zero(t, result.Aggregate.SessionCount)
	assert.Zero(t, result.Aggregate.TotalNet)
}

func TestRunNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.payouts.GetRun(ctx, 987654)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)

	_, err = f.payouts.Simulate(ctx, 987654)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)

	_, err = f.payouts.Finalize(ctx, 987654)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestUpdateTaxConfigRejectsInvalidRates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	run, err := f.payouts.CreateRun(ctx)
	require.NoError(t, err)

	_, err = f.payouts.UpdateTaxConfig(ctx, run.ID, taxdomain.Config{PlatformFeePercent: 101})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidTaxConfig)
}

func TestCurrentBreakdownUsesExplicitPayout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	amount := 5000.0
	_, err := f.sessions.Create(ctx, sessiondomain.CreateRequest{
		MentorID:        "m1",
		MentorName:      "Mentor m1",
		SessionDate:     f.clock.Now().Add(-time.Hour),
		SessionType:     sessiondomain.TypeRecorded,
		DurationMinutes: 60,
		RatePerHour:     4000,
		Payout:          &amount,
	})
	require.NoError(t, err)

	run, err := f.payouts.CreateRun(ctx)
	require.NoError(t, err)

	breakdowns, err := f.payouts.CurrentBreakdown(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, breakdowns, 1)
	assert.InDelta(t, 5000, breakdowns[0].Gross, 1e-9)
	assert.InDelta(t, 4160, breakdowns[0].Net, 0.005)
}

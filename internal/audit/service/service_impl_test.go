package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/mentorpay/mentorpay/internal/audit/domain"
	"github.com/mentorpay/mentorpay/internal/audit/repository"
	"github.com/mentorpay/mentorpay/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAuditService(t *testing.T) (auditdomain.Service, *clock.FakeClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, fake
}

func TestRecordAndList(t *testing.T) {
	svc, fake := newAuditService(t)
	ctx := context.Background()

	svc.Record(ctx, auditdomain.Entry{
		Action:     "payout_run.finalized",
		TargetType: "payout_run",
		TargetID:   "42",
		Metadata:   map[string]any{"total_net": 3328.0},
	})
	fake.Advance(time.Minute)
	svc.Record(ctx, auditdomain.Entry{
		ActorType:  auditdomain.ActorTypeAdmin,
		ActorID:    "admin-1",
		Action:     "tax_config.updated",
		TargetType: "tax_config",
	})

	all, err := svc.List(ctx, auditdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	byAction, err := svc.List(ctx, auditdomain.ListRequest{Action: "payout_run.finalized"})
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	assert.Equal(t, auditdomain.ActorTypeSystem, byAction[0].ActorType)
	require.NotNil(t, byAction[0].TargetID)
	assert.Equal(t, "42", *byAction[0].TargetID)
}

func TestRecordDropsBlankAction(t *testing.T) {
	svc, _ := newAuditService(t)
	ctx := context.Background()

	svc.Record(ctx, auditdomain.Entry{Action: "   "})

	all, err := svc.List(ctx, auditdomain.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRecordSurvivesCancelledContext(t *testing.T) {
	svc, _ := newAuditService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Record(ctx, auditdomain.Entry{Action: "payout_run.finalized"})

	all, err := svc.List(context.Background(), auditdomain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListRejectsInvertedRange(t *testing.T) {
	svc, _ := newAuditService(t)

	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err := svc.List(context.Background(), auditdomain.ListRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/mentorpay/mentorpay/internal/clock"
	"github.com/mentorpay/mentorpay/internal/config"
	"github.com/mentorpay/mentorpay/internal/session/domain"
	"github.com/mentorpay/mentorpay/internal/session/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(testNow)
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Cfg:   config.Config{MinRatePerHour: 500},
		Repo:  repository.Provide(),
	})
	return svc, fake
}

func validRequest() domain.CreateRequest {
	return domain.CreateRequest{
		MentorID:        "m1",
		MentorName:      "Asha",
		SessionDate:     testNow.Add(-24 * time.Hour),
		SessionType:     domain.TypeLive,
		DurationMinutes: 60,
		RatePerHour:     4000,
	}
}

func TestCreateSession(t *testing.T) {
	svc, _ := newTestService(t)

	sess, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotZero(t, sess.ID)
	assert.Equal(t, domain.StatusPendingReview, sess.Status)
	assert.Nil(t, sess.Payout)

	got, err := svc.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestCreateSessionValidation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name   string
		mutate func(*domain.CreateRequest)
		want   error
	}{
		{"blank mentor", func(r *domain.CreateRequest) { r.MentorID = "  " }, domain.ErrInvalidMentor},
		{"unknown type", func(r *domain.CreateRequest) { r.SessionType = "webinar" }, domain.ErrInvalidSessionType},
		{"duration too short", func(r *domain.CreateRequest) { r.DurationMinutes = 10 }, domain.ErrInvalidDuration},
		{"duration not multiple of 15", func(r *domain.CreateRequest) { r.DurationMinutes = 50 }, domain.ErrInvalidDuration},
		{"rate below minimum", func(r *domain.CreateRequest) { r.RatePerHour = 499 }, domain.ErrInvalidRate},
		{"future date", func(r *domain.CreateRequest) { r.SessionDate = testNow.Add(time.Hour) }, domain.ErrFutureSessionDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateSessionExplicitPayout(t *testing.T) {
	svc, _ := newTestService(t)

	amount := 5000.0
	req := validRequest()
	req.Payout = &amount

	sess, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, sess.Payout)
	assert.InDelta(t, 5000, *sess.Payout, 1e-9)
}

func TestListSessionsFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	other := validRequest()
	other.MentorID = "m2"
	second, err := svc.Create(ctx, other)
	require.NoError(t, err)

	byMentor, err := svc.List(ctx, domain.ListFilter{MentorID: "m2"})
	require.NoError(t, err)
	require.Len(t, byMentor, 1)
	assert.Equal(t, second.ID, byMentor[0].ID)

	require.NoError(t, svc.MarkPaid(ctx, []snowflake.ID{first.ID}))

	pending, err := svc.List(ctx, domain.ListFilter{
		Statuses: []domain.Status{domain.StatusPending, domain.StatusPendingReview},
	})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	paid, err := svc.List(ctx, domain.ListFilter{Statuses: []domain.Status{domain.StatusPaid}})
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, first.ID, paid[0].ID)
}

func TestDeleteSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, sess.ID))

	_, err = svc.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, sess.ID), domain.ErrNotFound)
}

func TestGetUnknownSession(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), snowflake.ID(404))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorpay/mentorpay/internal/clock"
	"github.com/mentorpay/mentorpay/internal/webhook/domain"
	"github.com/mentorpay/mentorpay/internal/webhook/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newEndpointService(t *testing.T, db *gorm.DB) domain.Service {
	t.Helper()
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	return NewService(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:       repository.Provide(),
		Dispatcher: newTestDispatcher(t, db),
	})
}

func TestCreateEndpointDefaults(t *testing.T) {
	svc := newEndpointService(t, newTestDB(t))

	endpoint, err := svc.Create(context.Background(), domain.CreateEndpointRequest{
		Name:   "bank-sync",
		URL:    "https://example.com/hooks",
		Secret: "whsec_1",
	})
	require.NoError(t, err)

	assert.True(t, endpoint.Active)
	assert.Equal(t, []string{domain.EventPayoutProcessed}, []string(endpoint.Events))
	assert.True(t, endpoint.SubscribedTo(domain.EventPayoutProcessed))
}

func TestCreateEndpointValidation(t *testing.T) {
	svc := newEndpointService(t, newTestDB(t))

	cases := []struct {
		name string
		req  domain.CreateEndpointRequest
		want error
	}{
		{"blank name", domain.CreateEndpointRequest{URL: "https://x.test", Secret: "s"}, domain.ErrInvalidName},
		{"missing secret", domain.CreateEndpointRequest{Name: "n", URL: "https://x.test"}, domain.ErrInvalidSecret},
		{"no scheme", domain.CreateEndpointRequest{Name: "n", URL: "example.com/hooks", Secret: "s"}, domain.ErrInvalidURL},
		{"bad scheme", domain.CreateEndpointRequest{Name: "n", URL: "ftp://example.com", Secret: "s"}, domain.ErrInvalidURL},
		{"no host", domain.CreateEndpointRequest{Name: "n", URL: "https://", Secret: "s"}, domain.ErrInvalidURL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateEndpoint(t *testing.T) {
	svc := newEndpointService(t, newTestDB(t))
	ctx := context.Background()

	endpoint, err := svc.Create(ctx, domain.CreateEndpointRequest{
		Name:   "bank-sync",
		URL:    "https://example.com/hooks",
		Secret: "whsec_1",
	})
	require.NoError(t, err)

	inactive := false
	name := "bank-sync-v2"
	updated, err := svc.Update(ctx, endpoint.ID, domain.UpdateEndpointRequest{
		Name:   &name,
		Active: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "bank-sync-v2", updated.Name)
	assert.False(t, updated.Active)

	// Inactive endpoints drop out of dispatch targeting.
	active, err := svc.ListActive(ctx, domain.EventPayoutProcessed)
	require.NoError(t, err)
	assert.Empty(t, active)

	badURL := "not a url"
	_, err = svc.Update(ctx, endpoint.ID, domain.UpdateEndpointRequest{URL: &badURL})
	assert.ErrorIs(t, err, domain.ErrInvalidURL)
}

func TestEndpointNotFound(t *testing.T) {
	svc := newEndpointService(t, newTestDB(t))
	ctx := context.Background()

	_, err := svc.Get(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrEndpointNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 404), domain.ErrEndpointNotFound)
	_, err = svc.Test(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrEndpointNotFound)
	_, err = svc.ListDeliveries(ctx, 404, 10)
	assert.ErrorIs(t, err, domain.ErrEndpointNotFound)
}

func TestTestEndpointDeliversAndRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get(domain.SignatureHeader))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	db := newTestDB(t)
	svc := newEndpointService(t, db)
	ctx := context.Background()

	endpoint, err := svc.Create(ctx, domain.CreateEndpointRequest{
		Name:   "probe",
		URL:    srv.URL,
		Secret: "whsec_test",
	})
	require.NoError(t, err)

	attempt, err := svc.Test(ctx, endpoint.ID)
	require.NoError(t, err)
	assert.True(t, attempt.Success)
	assert.Equal(t, domain.EventWebhookTest, attempt.Event)

	deliveries, err := svc.ListDeliveries(ctx, endpoint.ID, 0)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, attempt.ID, deliveries[0].ID)
}

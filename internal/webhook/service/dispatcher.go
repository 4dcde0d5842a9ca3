package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorpay/mentorpay/internal/clock"
	"github.com/mentorpay/mentorpay/internal/config"
	"github.com/mentorpay/mentorpay/internal/observability/metrics"
	"github.com/mentorpay/mentorpay/internal/signature"
	"github.com/mentorpay/mentorpay/internal/webhook/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DispatcherParams struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Cfg     config.Config
	Metrics *metrics.Metrics
	Repo    domain.Repository
}

// Dispatcher delivers signed event payloads over HTTP. Each endpoint gets
// exactly one attempt per dispatch; retry policy belongs to an external
// scheduler if anyone wants one.
type Dispatcher struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	client  *http.Client
	metrics *metrics.Metrics
	repo    domain.Repository
}

func NewDispatcher(p DispatcherParams) domain.Dispatcher {
	return &Dispatcher{
		db:      p.DB,
		log:     p.Log.Named("webhook.dispatcher"),
		genID:   p.GenID,
		clock:   p.Clock,
		client:  &http.Client{Timeout: p.Cfg.WebhookTimeout},
		metrics: p.Metrics,
		repo:    p.Repo,
	}
}

func (d *Dispatcher) DispatchPayoutProcessed(ctx context.Context, endpoints []domain.Endpoint, event domain.PayoutProcessedEvent) []domain.DeliveryAttempt {
	active := make([]domain.Endpoint, 0, len(endpoints))
	for _, endpoint := range endpoints {
		if endpoint.Active && endpoint.SubscribedTo(domain.EventPayoutProcessed) {
			active = append(active, endpoint)
		}
	}
	if len(active) == 0 {
		return nil
	}

	// Deliveries run concurrently and independently; all outcomes are
	// collected before returning.
	attempts := make([]domain.DeliveryAttempt, len(active))
	var wg sync.WaitGroup
	for i, endpoint := range active {
		wg.Add(1)
		go func(i int, endpoint domain.Endpoint) {
			defer wg.Done()
			attempts[i] = d.Deliver(ctx, endpoint, domain.EventPayoutProcessed, event)
		}(i, endpoint)
	}
	wg.Wait()
	return attempts
}

// Deliver signs and posts one event to one endpoint. Failures are recorded
// in the returned attempt, never raised.
func (d *Dispatcher) Deliver(ctx context.Context, endpoint domain.Endpoint, event string, data any) domain.DeliveryAttempt {
	attempt := domain.DeliveryAttempt{
		ID:         d.genID.Generate(),
		EndpointID: endpoint.ID,
		Event:      event,
		CreatedAt:  d.clock.Now(),
	}

	body, err := signature.Canonicalize(map[string]any{
		"event": event,
		"data":  data,
	})
	if err != nil {
		attempt.ErrorMessage = errMessage(err)
		d.record(ctx, &attempt, 0)
		return attempt
	}
	attempt.Payload = datatypes.JSON(body)
	attempt.Signature = signature.SignBytes(endpoint.Secret, body)

	// The request body is byte-identical to what was signed.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		attempt.ErrorMessage = errMessage(err)
		d.record(ctx, &attempt, 0)
		return attempt
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(domain.SignatureHeader, attempt.Signature)

	start := time.Now()
	resp, err := d.client.Do(req)
	elapsed := time.Since(start)
	attempt.DurationMS = elapsed.Milliseconds()

	if err != nil {
		attempt.ErrorMessage = errMessage(err)
		d.record(ctx, &attempt, elapsed)
		return attempt
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	attempt.StatusCode = resp.StatusCode
	attempt.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	if !attempt.Success {
		attempt.ErrorMessage = errMessage(&httpStatusError{status: resp.Status})
	}
	d.record(ctx, &attempt, elapsed)
	return attempt
}

func (d *Dispatcher) record(ctx context.Context, attempt *domain.DeliveryAttempt, elapsed time.Duration) {
	d.metrics.ObserveDelivery(attempt.Success, elapsed.Seconds())

	if !attempt.Success {
		msg := ""
		if attempt.ErrorMessage != nil {
			msg = *attempt.ErrorMessage
		}
		d.log.Warn("webhook delivery failed",
			zap.String("endpoint_id", attempt.EndpointID.String()),
			zap.String("event", attempt.Event),
			zap.Int("status_code", attempt.StatusCode),
			zap.String("error", msg),
		)
	}

	// Delivery history is observability data; losing a row must not fail
	// the dispatch.
	if err := d.repo.InsertAttempt(context.WithoutCancel(ctx), d.db, attempt); err != nil {
		d.log.Warn("failed to persist delivery attempt", zap.Error(err))
	}
}

type httpStatusError struct {
	status string
}

func (e *httpStatusError) Error() string { return "non-2xx response: " + e.status }

func errMessage(err error) *string {
	msg := err.Error()
	return &msg
}

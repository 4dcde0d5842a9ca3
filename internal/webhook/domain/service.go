package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateEndpointRequest struct {
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Secret string   `json:"secret"`
	Active *bool    `json:"active,omitempty"`
	Events []string `json:"events,omitempty"`
}

type UpdateEndpointRequest struct {
	Name   *string   `json:"name,omitempty"`
	URL    *string   `json:"url,omitempty"`
	Secret *string   `json:"secret,omitempty"`
	Active *bool     `json:"active,omitempty"`
	Events *[]string `json:"events,omitempty"`
}

// Service manages endpoint registration.
type Service interface {
	Create(ctx context.Context, req CreateEndpointRequest) (*Endpoint, error)
	Get(ctx context.Context, id snowflake.ID) (*Endpoint, error)
	List(ctx context.Context) ([]Endpoint, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateEndpointRequest) (*Endpoint, error)
	Delete(ctx context.Context, id snowflake.ID) error
	// ListActive returns active endpoints subscribed to the given event.
	ListActive(ctx context.Context, event string) ([]Endpoint, error)
	// Test sends a real signed webhook.test event to one endpoint.
	Test(ctx context.Context, id snowflake.ID) (*DeliveryAttempt, error)
	ListDeliveries(ctx context.Context, endpointID snowflake.ID, limit int) ([]DeliveryAttempt, error)
}

// Dispatcher broadcasts a finalize event to a set of endpoints. Deliveries
// are independent: a failure is recorded in its attempt and never aborts
// the batch. Dispatch itself is not idempotent; the payout orchestrator
// guarantees at most one call per finalize.
type Dispatcher interface {
	DispatchPayoutProcessed(ctx context.Context, endpoints []Endpoint, event PayoutProcessedEvent) []DeliveryAttempt
	Deliver(ctx context.Context, endpoint Endpoint, event string, data any) DeliveryAttempt
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, endpoint *Endpoint) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Endpoint, error)
	List(ctx context.Context, db *gorm.DB) ([]Endpoint, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]Endpoint, error)
	Update(ctx context.Context, db *gorm.DB, endpoint *Endpoint) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertAttempt(ctx context.Context, db *gorm.DB, attempt *DeliveryAttempt) error
	ListAttempts(ctx context.Context, db *gorm.DB, endpointID snowflake.ID, limit int) ([]DeliveryAttempt, error)
}

var (
	ErrInvalidURL       = errors.New("invalid_webhook_url")
	ErrInvalidName      = errors.New("invalid_webhook_name")
	ErrInvalidSecret    = errors.New("invalid_webhook_secret")
	ErrEndpointNotFound = errors.New("webhook_endpoint_not_found")
)

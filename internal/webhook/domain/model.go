package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	EventPayoutProcessed = "payout_processed"
	EventWebhookTest     = "webhook.test"
)

// SignatureHeader carries the HMAC of the delivered body.
const SignatureHeader = "X-MentorPay-Signature"

// Endpoint is an admin-registered webhook receiver. The dispatcher only
// reads URL, Secret, and Active.
type Endpoint struct {
	ID snowflake.ID `gorm:"primaryKey"`

	Name   string `gorm:"type:text;not null"`
	URL    string `gorm:"type:text;not null"`
	Secret string `gorm:"type:text;not null" json:"-"`
	Active bool   `gorm:"not null;default:true"`

	// Events the endpoint subscribes to, e.g. ["payout_processed"].
	Events datatypes.JSONSlice[string] `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Endpoint) TableName() string { return "webhook_endpoints" }

func (e Endpoint) SubscribedTo(event string) bool {
	if len(e.Events) == 0 {
		return event == EventPayoutProcessed
	}
	for _, candidate := range e.Events {
		if candidate == event {
			return true
		}
	}
	return false
}

// DeliveryAttempt records one outbound delivery, success or failure.
type DeliveryAttempt struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	EndpointID snowflake.ID `gorm:"not null;index" json:"endpoint_id"`

	Event     string         `gorm:"type:text;not null" json:"event"`
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	Signature string         `gorm:"type:text;not null" json:"signature"`

	Success      bool    `gorm:"not null" json:"success"`
	StatusCode   int     `json:"status_code,omitempty"`
	ErrorMessage *string `gorm:"type:text" json:"error_message,omitempty"`
	DurationMS   int64   `gorm:"column:duration_ms" json:"duration_ms"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (DeliveryAttempt) TableName() string { return "webhook_delivery_attempts" }

// PayoutProcessedEvent is the data section of the finalize payload. Field
// names are wire contract; receivers verify the signature against these
// exact bytes.
type PayoutProcessedEvent struct {
	PayoutDate       time.Time `json:"payout_date"`
	TotalAmount      float64   `json:"total_amount"`
	SessionCount     int       `json:"session_count"`
	MentorCount      int       `json:"mentor_count"`
	SessionIDs       []string  `json:"session_ids"`
	AdjustmentsTotal float64   `json:"adjustments_total"`
}

// Package domain contains payment records and the canonical gateway event.
package domain

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventKind classifies a normalized gateway event.
type EventKind string

const (
	EventKindCaptured EventKind = "captured"
	EventKindFailed   EventKind = "failed"
)

// PaymentEvent is the canonical event parsed from a verified webhook payload.
// Amount is in minor currency units. Immutable once constructed.
type PaymentEvent struct {
	Kind             EventKind
	GatewayPaymentID string
	GatewayOrderID   string
	Amount           int64
	Currency         string
	Method           string
	UserID           snowflake.ID
	PlanID           string
	RawPayload       []byte
}

// PaymentStatus represents lifecycle states for a payment record.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSuccess    PaymentStatus = "success"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// Payment is the durable record of one gateway payment. GatewayPaymentID is
// unique; the insert on that column is the idempotency claim for the whole
// activation pipeline.
type Payment struct {
	ID               snowflake.ID   `gorm:"primaryKey"`
	UserID           snowflake.ID   `gorm:"not null;index"`
	SubscriptionID   *snowflake.ID  `gorm:""`
	GatewayPaymentID string         `gorm:"type:text;not null;uniqueIndex"`
	GatewayOrderID   string         `gorm:"type:text"`
	Amount           int64          `gorm:"not null"`
	Currency         string         `gorm:"type:text;not null"`
	Status           PaymentStatus  `gorm:"type:text;not null"`
	Method           string         `gorm:"type:text"`
	RawPayload       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt        time.Time      `gorm:"not null"`
	UpdatedAt        time.Time      `gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

// Gateway verifies and normalizes webhook deliveries from one payment
// provider. Verify must operate on the exact raw request bytes; a re-serialized
// body can change byte layout and invalidate the signature.
type Gateway interface {
	Name() string
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*PaymentEvent, error)
}

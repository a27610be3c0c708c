// Package domain contains subscription records and the activation contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SubscriptionStatus represents lifecycle states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// Subscription is one paid access window. EndAt is always StartAt plus the
// plan duration at activation time and is never mutated independently.
type Subscription struct {
	ID        snowflake.ID       `gorm:"primaryKey"`
	UserID    snowflake.ID       `gorm:"not null;index"`
	PlanID    string             `gorm:"type:text;not null"`
	Status    SubscriptionStatus `gorm:"type:text;not null"`
	StartAt   time.Time          `gorm:"not null"`
	EndAt     time.Time          `gorm:"not null"`
	CreatedAt time.Time          `gorm:"not null"`
	UpdatedAt time.Time          `gorm:"not null"`
}

func (Subscription) TableName() string { return "subscriptions" }

// Entitlement is the user-facing summary of current subscription access.
type Entitlement struct {
	UserID         snowflake.ID       `json:"user_id"`
	SubscriptionID snowflake.ID       `json:"subscription_id"`
	PlanID         string             `json:"plan_id"`
	Status         SubscriptionStatus `json:"status"`
	StartAt        time.Time          `json:"start_at"`
	EndAt          time.Time          `json:"end_at"`
}

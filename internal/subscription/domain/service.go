package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type ActivateRequest struct {
	UserID snowflake.ID
	PlanID string
}

type Service interface {
	// Activate creates an active subscription for the purchased plan and
	// repoints the user's entitlement snapshot.
	Activate(ctx context.Context, req ActivateRequest) (*Subscription, error)

	// GetUserEntitlement returns the user's current entitlement. It prefers the
	// cached snapshot but reconciles against the latest active subscription, so
	// a crash between subscription insert and snapshot update heals on read.
	GetUserEntitlement(ctx context.Context, userID snowflake.ID) (*Entitlement, error)
}

var (
	ErrInvalidUser          = errors.New("invalid_user")
	ErrPlanNotFound         = errors.New("plan_not_found")
	ErrNoActiveSubscription = errors.New("no_active_subscription")
)

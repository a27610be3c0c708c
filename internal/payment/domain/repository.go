package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertIfAbsent(ctx context.Context, db *gorm.DB, payment *Payment) (bool, error)
	MarkProcessing(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (bool, error)
	FindByGatewayPaymentID(ctx context.Context, db *gorm.DB, gatewayPaymentID string) (*Payment, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Payment, error)
	MarkStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status PaymentStatus, now time.Time) error
	AttachSubscription(ctx context.Context, db *gorm.DB, id snowflake.ID, subscriptionID snowflake.ID, status PaymentStatus, now time.Time) error
}

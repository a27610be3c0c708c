package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/alphaedge/backend/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// InsertIfAbsent claims a gateway payment id. The unique index on
// gateway_payment_id makes the insert the idempotency barrier: only the call
// that reports true owns the activation for this delivery.
func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, payment *domain.Payment) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO payments (
			id, user_id, subscription_id, gateway_payment_id, gateway_order_id,
			amount, currency, status, method, raw_payload, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (gateway_payment_id) DO NOTHING`,
		payment.ID,
		payment.UserID,
		payment.SubscriptionID,
		payment.GatewayPaymentID,
		payment.GatewayOrderID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.Method,
		payment.RawPayload,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkProcessing moves a pending payment into processing. The WHERE clause on
// status makes the transition a compare-and-swap: concurrent deliveries of the
// same gateway payment id race here, and only one caller sees rows-affected 1.
func (r *repo) MarkProcessing(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE payments
		 SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.PaymentStatusProcessing,
		now,
		id,
		domain.PaymentStatusPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByGatewayPaymentID(ctx context.Context, db *gorm.DB, gatewayPaymentID string) (*domain.Payment, error) {
	var item domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, subscription_id, gateway_payment_id, gateway_order_id,
			amount, currency, status, method, raw_payload, created_at, updated_at
		 FROM payments
		 WHERE gateway_payment_id = ?
		 LIMIT 1`,
		gatewayPaymentID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var item domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, subscription_id, gateway_payment_id, gateway_order_id,
			amount, currency, status, method, raw_payload, created_at, updated_at
		 FROM payments
		 WHERE id = ?
		 LIMIT 1`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.Payment, error) {
	var items []domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, subscription_id, gateway_payment_id, gateway_order_id,
			amount, currency, status, method, raw_payload, created_at, updated_at
		 FROM payments
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MarkStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.PaymentStatus, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payments
		 SET status = ?, updated_at = ?
		 WHERE id = ?`,
		status,
		now,
		id,
	).Error
}

func (r *repo) AttachSubscription(ctx context.Context, db *gorm.DB, id snowflake.ID, subscriptionID snowflake.ID, status domain.PaymentStatus, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payments
		 SET subscription_id = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		subscriptionID,
		status,
		now,
		id,
	).Error
}

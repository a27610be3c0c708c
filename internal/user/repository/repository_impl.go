package repository

import (
	"context"
	"strings"
	"time"

	"github.com/alphaedge/backend/internal/user/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (
			id, email, name, password_hash, google_subject,
			active_subscription_id, subscription_status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.GoogleSubject,
		user.ActiveSubscriptionID,
		user.SubscriptionStatus,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var item domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, name, password_hash, google_subject,
			active_subscription_id, subscription_status, created_at, updated_at
		 FROM users
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

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var item domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, name, password_hash, google_subject,
			active_subscription_id, subscription_status, created_at, updated_at
		 FROM users
		 WHERE email = ?
		 LIMIT 1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindByGoogleSubject(ctx context.Context, db *gorm.DB, subject string) (*domain.User, error) {
	var item domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, name, password_hash, google_subject,
			active_subscription_id, subscription_status, created_at, updated_at
		 FROM users
		 WHERE google_subject = ?
		 LIMIT 1`,
		subject,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) LinkGoogleSubject(ctx context.Context, db *gorm.DB, userID snowflake.ID, subject string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users
		 SET google_subject = ?, updated_at = ?
		 WHERE id = ?`,
		subject,
		now,
		userID,
	).Error
}

func (r *repo) UpdateEntitlement(ctx context.Context, db *gorm.DB, userID snowflake.ID, subscriptionID snowflake.ID, status string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users
		 SET active_subscription_id = ?, subscription_status = ?, updated_at = ?
		 WHERE id = ?`,
		subscriptionID,
		status,
		now,
		userID,
	).Error
}

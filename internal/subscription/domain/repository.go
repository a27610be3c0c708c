package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	// FindLatestActiveByUser returns the active, non-expired subscription with
	// the latest end date, or nil when the user has none.
	FindLatestActiveByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, at time.Time) (*Subscription, error)
}

package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindByGoogleSubject(ctx context.Context, db *gorm.DB, subject string) (*User, error)
	LinkGoogleSubject(ctx context.Context, db *gorm.DB, userID snowflake.ID, subject string, now time.Time) error
	UpdateEntitlement(ctx context.Context, db *gorm.DB, userID snowflake.ID, subscriptionID snowflake.ID, status string, now time.Time) error
}

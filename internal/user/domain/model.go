// Package domain contains the user record and its entitlement projection.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is an account holder. ActiveSubscriptionID and SubscriptionStatus form
// a denormalized snapshot of the user's current subscription for fast reads;
// the subscriptions table remains the source of truth.
type User struct {
	ID                   snowflake.ID  `gorm:"primaryKey"`
	Email                string        `gorm:"type:text;not null;uniqueIndex"`
	Name                 string        `gorm:"type:text;not null"`
	PasswordHash         *string       `gorm:"type:text"`
	GoogleSubject        *string       `gorm:"type:text"`
	ActiveSubscriptionID *snowflake.ID `gorm:""`
	SubscriptionStatus   *string       `gorm:"type:text"`
	CreatedAt            time.Time     `gorm:"not null"`
	UpdatedAt            time.Time     `gorm:"not null"`
}

func (User) TableName() string { return "users" }

var (
	ErrNotFound   = errors.New("user_not_found")
	ErrUserExists = errors.New("user_exists")
)

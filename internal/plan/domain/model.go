// Package domain contains the plan reference data consulted during activation.
package domain

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

// Plan is read-only catalog data. Price is in minor currency units;
// DurationDays drives the subscription window.
type Plan struct {
	ID           string         `gorm:"primaryKey;type:text"`
	Name         string         `gorm:"type:text;not null"`
	Price        int64          `gorm:"not null"`
	DurationDays int            `gorm:"not null"`
	Description  string         `gorm:"type:text"`
	Features     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
}

func (Plan) TableName() string { return "plans" }

var ErrNotFound = errors.New("plan_not_found")

package repository

import (
	"context"
	"strings"

	"github.com/alphaedge/backend/internal/plan/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Plan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}

	var item domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, price, duration_days, description, features, created_at, updated_at
		 FROM plans
		 WHERE id = ?
		 LIMIT 1`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == "" {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Plan, error) {
	var items []domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, price, duration_days, description, features, created_at, updated_at
		 FROM plans
		 ORDER BY price ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO plans (id, name, price, duration_days, description, features, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		plan.ID,
		plan.Name,
		plan.Price,
		plan.DurationDays,
		plan.Description,
		plan.Features,
		plan.CreatedAt,
		plan.UpdatedAt,
	).Error
}

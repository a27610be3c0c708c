// Package seed loads the plan catalog into the plans table on startup so a
// fresh deployment can accept purchases immediately.
package seed

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/alphaedge/backend/internal/clock"
	"github.com/alphaedge/backend/internal/config"
	plandomain "github.com/alphaedge/backend/internal/plan/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsurePlans inserts every catalog plan that is not already present. Existing
// rows are left untouched so operator edits survive restarts.
func EnsurePlans(db *gorm.DB, repo plandomain.Repository, catalog *config.PlanCatalog, clk clock.Clock) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	now := clk.Now().UTC()
	for _, item := range catalog.Plans() {
		var features datatypes.JSON
		if len(item.Features) > 0 {
			encoded, err := json.Marshal(item.Features)
			if err != nil {
				return err
			}
			features = datatypes.JSON(encoded)
		}

		plan := plandomain.Plan{
			ID:           item.ID,
			Name:         item.Name,
			Price:        item.Price,
			DurationDays: item.DurationDays,
			Description:  item.Description,
			Features:     features,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repo.InsertIfAbsent(ctx, db, &plan); err != nil {
			return err
		}
	}
	return nil
}

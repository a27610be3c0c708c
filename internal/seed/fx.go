package seed

import (
	"github.com/alphaedge/backend/internal/clock"
	"github.com/alphaedge/backend/internal/config"
	plandomain "github.com/alphaedge/backend/internal/plan/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(func(db *gorm.DB, repo plandomain.Repository, catalog *config.PlanCatalog, clk clock.Clock) error {
		return EnsurePlans(db, repo, catalog, clk)
	}),
)

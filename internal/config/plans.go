package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CatalogPlan describes one purchasable plan in the catalog file.
type CatalogPlan struct {
	ID           string   `mapstructure:"id"`
	Name         string   `mapstructure:"name"`
	Price        int64    `mapstructure:"price"`
	DurationDays int      `mapstructure:"durationDays"`
	Description  string   `mapstructure:"description"`
	Features     []string `mapstructure:"features"`
}

func DefaultPlans() []CatalogPlan {
	return []CatalogPlan{
		{
			ID:           "basic",
			Name:         "Basic",
			Price:        49_900,
			DurationDays: 30,
			Description:  "Single strategy backtests",
			Features:     []string{"backtests", "daily-data"},
		},
		{
			ID:           "pro",
			Name:         "Pro",
			Price:        149_900,
			DurationDays: 30,
			Description:  "Unlimited backtests with intraday data",
			Features:     []string{"backtests", "daily-data", "intraday-data", "exports"},
		},
		{
			ID:           "enterprise",
			Name:         "Enterprise",
			Price:        1_500_000,
			DurationDays: 365,
			Description:  "Annual access with priority support",
			Features:     []string{"backtests", "daily-data", "intraday-data", "exports", "support"},
		},
	}
}

// PlanCatalog holds the current plan catalog, reloadable at runtime.
type PlanCatalog struct {
	current atomic.Value // holds []CatalogPlan
}

// NewPlanCatalog loads plans.yml if present, falling back to compiled-in
// defaults, and watches the file for changes.
func NewPlanCatalog() (*PlanCatalog, error) {
	v := viper.New()

	v.SetConfigName("plans")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/alphaedge")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ALPHAEDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fromFile := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fromFile = false
	}

	plans := DefaultPlans()
	if fromFile {
		var loaded []CatalogPlan
		if err := v.UnmarshalKey("plans", &loaded); err != nil {
			return nil, err
		}
		if err := validatePlans(loaded); err != nil {
			return nil, err
		}
		plans = loaded
	}

	catalog := &PlanCatalog{}
	catalog.current.Store(plans)

	if fromFile {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated []CatalogPlan
			if err := v.UnmarshalKey("plans", &updated); err != nil {
				log.Printf("[plan-catalog] reload failed: %v", err)
				return
			}
			if err := validatePlans(updated); err != nil {
				log.Printf("[plan-catalog] invalid catalog ignored: %v", err)
				return
			}
			catalog.current.Store(updated)
			log.Printf("[plan-catalog] reloaded from %s", e.Name)
		})
	}

	return catalog, nil
}

func (c *PlanCatalog) Plans() []CatalogPlan {
	return c.current.Load().([]CatalogPlan)
}

func validatePlans(plans []CatalogPlan) error {
	if len(plans) == 0 {
		return errors.New("plans cannot be empty")
	}
	seen := make(map[string]struct{}, len(plans))
	for _, p := range plans {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return errors.New("plan id cannot be empty")
		}
		if _, dup := seen[id]; dup {
			return errors.New("duplicate plan id: " + id)
		}
		seen[id] = struct{}{}
		if p.DurationDays < 1 {
			return errors.New("plan duration must be at least one day: " + id)
		}
		if p.Price < 0 {
			return errors.New("plan price cannot be negative: " + id)
		}
	}
	return nil
}

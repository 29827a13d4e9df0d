package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/set-night/surveypay/internal/config"
	"github.com/set-night/surveypay/internal/domain"
)

// PlanLoader re-reads the plan configuration document.
type PlanLoader func() (*config.PlanConfig, error)

// PlanCatalog caches the plan configuration and refreshes it after ttl.
type PlanCatalog struct {
	mu       sync.RWMutex
	cfg      *config.PlanConfig
	cachedAt time.Time
	ttl      time.Duration
	load     PlanLoader
}

// NewPlanCatalog wraps an already loaded document. A zero ttl or nil loader
// disables refreshing.
func NewPlanCatalog(cfg *config.PlanConfig, ttl time.Duration, load PlanLoader) *PlanCatalog {
	return &PlanCatalog{cfg: cfg, cachedAt: time.Now(), ttl: ttl, load: load}
}

func (c *PlanCatalog) Get() *config.PlanConfig {
	c.mu.RLock()
	cfg, stale := c.cfg, c.load != nil && c.ttl > 0 && time.Since(c.cachedAt) > c.ttl
	c.mu.RUnlock()

	if !stale {
		return cfg
	}

	fresh, err := c.load()
	if err != nil {
		slog.Warn("plan config reload failed, keeping previous", "error", err)
		c.mu.Lock()
		c.cachedAt = time.Now()
		c.mu.Unlock()
		return cfg
	}
	c.Set(fresh)
	return fresh
}

func (c *PlanCatalog) Set(cfg *config.PlanConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.cachedAt = time.Now()
}

func (c *PlanCatalog) Tiers() []domain.PlanTier {
	return c.Get().Tiers()
}

func (c *PlanCatalog) TillNumber() string {
	return c.Get().Payment.TillNumber
}

func (c *PlanCatalog) DefaultPlan() string {
	return c.Get().DefaultPlan
}

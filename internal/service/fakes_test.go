package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/set-night/surveypay/internal/config"
	"github.com/set-night/surveypay/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	updates  []domain.PlanUpdate
	getErr   error
	updErr   error
	panicOn  bool
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: make(map[string]*domain.Profile)}
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) UpdatePlan(_ context.Context, userID string, upd domain.PlanUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOn {
		panic("profile store exploded")
	}
	if f.updErr != nil {
		return f.updErr
	}
	f.updates = append(f.updates, upd)
	at := upd.PlanUpdatedAt
	f.profiles[userID] = &domain.Profile{
		UserID:                   userID,
		CurrentPlan:              upd.CurrentPlan,
		PlanUpdatedAt:            &at,
		LastPaymentAmount:        upd.LastPaymentAmount,
		LastPaymentTransactionID: upd.LastPaymentTransactionID,
	}
	return nil
}

func (f *fakeProfiles) setPlan(userID, plan string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[userID] = &domain.Profile{UserID: userID, CurrentPlan: plan}
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]domain.UserProgress
	loadErr error
	saveErr error
	saves   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]domain.UserProgress)}
}

func (c *fakeCache) LoadProgress(_ context.Context, userID string) (domain.UserProgress, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadErr != nil {
		return domain.UserProgress{}, c.loadErr
	}
	p, ok := c.entries[userID]
	if !ok {
		return domain.UserProgress{}, domain.ErrCacheMiss
	}
	return p.Clone(), nil
}

func (c *fakeCache) SaveProgress(_ context.Context, userID string, p domain.UserProgress) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saves++
	c.entries[userID] = p.Clone()
	return nil
}

func (c *fakeCache) get(userID string) (domain.UserProgress, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[userID]
	return p, ok
}

var errStore = errors.New("store unavailable")

type fixture struct {
	profiles *fakeProfiles
	cache    *fakeCache
	plans    *PlanCatalog
	notifier *Notifier
	progress *ProgressService
	upgrades *UpgradeService
	events   []domain.PlanUpgraded
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	planCfg, err := config.LoadPlans("")
	require.NoError(t, err)
	surveyCfg, err := config.LoadSurveys("")
	require.NoError(t, err)

	f := &fixture{
		profiles: newFakeProfiles(),
		cache:    newFakeCache(),
		plans:    NewPlanCatalog(planCfg, 0, nil),
		notifier: NewNotifier(),
		now:      time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	f.progress = NewProgressService(f.cache, f.profiles, f.plans, surveyCfg, time.UTC)
	f.progress.now = func() time.Time { return f.now }
	f.upgrades = NewUpgradeService(&config.Config{
		MerchantMarker:   "SURVEYPAY",
		MinMessageLength: 20,
	}, f.plans, f.profiles, f.progress, f.notifier)
	f.upgrades.now = func() time.Time { return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC) }

	f.notifier.Subscribe(func(ev domain.PlanUpgraded) {
		f.events = append(f.events, ev)
	})
	return f
}

package service

import (
	"testing"
	"time"

	"github.com/set-night/surveypay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCatalog_Reload(t *testing.T) {
	first, err := config.LoadPlans("")
	require.NoError(t, err)

	second := *first
	second.DefaultPlan = "Bronze"

	loads := 0
	c := NewPlanCatalog(first, time.Nanosecond, func() (*config.PlanConfig, error) {
		loads++
		return &second, nil
	})
	time.Sleep(time.Millisecond)

	assert.Equal(t, "Bronze", c.DefaultPlan())
	assert.Equal(t, 1, loads)
}

func TestPlanCatalog_ReloadFailureKeepsPrevious(t *testing.T) {
	first, err := config.LoadPlans("")
	require.NoError(t, err)

	c := NewPlanCatalog(first, time.Nanosecond, func() (*config.PlanConfig, error) {
		return nil, errStore
	})
	time.Sleep(time.Millisecond)

	assert.Equal(t, "Free", c.DefaultPlan())
	assert.Equal(t, "3566188", c.TillNumber())
}

func TestPlanCatalog_NoLoaderNeverReloads(t *testing.T) {
	first, err := config.LoadPlans("")
	require.NoError(t, err)

	c := NewPlanCatalog(first, time.Nanosecond, nil)
	time.Sleep(time.Millisecond)

	assert.Same(t, first, c.Get())
	assert.Len(t, c.Tiers(), 5)
}

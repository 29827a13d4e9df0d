package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResetter struct {
	calls atomic.Int32
}

func (c *countingResetter) ResetDaily(context.Context) int {
	c.calls.Add(1)
	return 0
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(time.UTC, "not a cron spec", &countingResetter{})
	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_RunsJobs(t *testing.T) {
	r := &countingResetter{}
	s := NewScheduler(time.UTC, "@every 1s", r)

	var ticks atomic.Int32
	s.Every("tick", time.Second, func(context.Context) { ticks.Add(1) })

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return r.calls.Load() > 0 && ticks.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)
}

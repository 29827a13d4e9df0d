package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DailyResetter zeroes per-day counters.
type DailyResetter interface {
	ResetDaily(ctx context.Context) int
}

// Scheduler runs background jobs on cron schedules.
type Scheduler struct {
	cron     *cron.Cron
	resetter DailyResetter
	spec     string
	extra    []job
}

type job struct {
	name string
	spec string
	fn   func(ctx context.Context)
}

func NewScheduler(loc *time.Location, resetSpec string, resetter DailyResetter) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		resetter: resetter,
		spec:     resetSpec,
	}
}

// Every adds a periodic housekeeping job; it must be called before Start.
func (s *Scheduler) Every(name string, interval time.Duration, fn func(ctx context.Context)) {
	s.extra = append(s.extra, job{name: name, spec: "@every " + interval.String(), fn: fn})
}

// Start registers all jobs and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		n := s.resetter.ResetDaily(ctx)
		slog.Info("daily quota reset", "sessions", n)
	}); err != nil {
		return fmt.Errorf("schedule daily reset %q: %w", s.spec, err)
	}

	for _, j := range s.extra {
		j := j
		if _, err := s.cron.AddFunc(j.spec, func() { j.fn(ctx) }); err != nil {
			return fmt.Errorf("schedule %s: %w", j.name, err)
		}
	}

	s.cron.Start()
	slog.Info("scheduler started", "daily_reset", s.spec, "jobs", len(s.extra)+1)
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("scheduler stopped")
}

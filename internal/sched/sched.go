// Package sched runs the pipeline as a daemon: one run immediately at
// startup, then one run per day at the configured wall-clock time.
package sched

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"reportpipe/internal/config"
	"reportpipe/internal/logging"
)

// Runner is one full pipeline run.
type Runner func(ctx context.Context) error

// Daemon triggers a Runner on a daily schedule. Ticks are single-flight: a
// tick that fires while a run is still in progress is skipped, and a failed
// run holds the slot for the configured backoff before the next tick is
// accepted.
type Daemon struct {
	// DailyAt is the "HH:MM" run time; empty means "08:00".
	DailyAt string

	// Backoff is the pause after a failed run.
	Backoff time.Duration

	Run    Runner
	Logger logging.Logger

	mu sync.Mutex
}

// Start runs immediately, then daily, until ctx is canceled. It returns
// ctx.Err() after the in-flight run (if any) finishes.
func (d *Daemon) Start(ctx context.Context) error {
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}

	spec, err := d.cronSpec()
	if err != nil {
		return err
	}

	d.tick(ctx)

	c := cron.New()
	if _, err = c.AddFunc(spec, func() { d.tick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule %q: %w", spec, err)
	}

	d.Logger.Info(ctx, "scheduler started", "daily_at", d.dailyAt(), "spec", spec)
	c.Start()

	<-ctx.Done()
	d.Logger.Info(ctx, "scheduler stopping")

	// Wait for a running job to finish before returning.
	<-c.Stop().Done()
	return ctx.Err()
}

// tick runs the pipeline once, skipping if a run is already in flight.
func (d *Daemon) tick(ctx context.Context) {
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	if !d.mu.TryLock() {
		d.Logger.Info(ctx, "previous run still in progress, skipping tick")
		return
	}
	defer d.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	err := d.Run(ctx)
	if err == nil {
		d.Logger.Info(ctx, "scheduled run succeeded", "elapsed", time.Since(start).String())
		return
	}

	d.Logger.Error(ctx, "scheduled run failed", err, "elapsed", time.Since(start).String())
	if d.Backoff > 0 {
		// Hold the single-flight slot through the backoff window.
		select {
		case <-time.After(d.Backoff):
		case <-ctx.Done():
		}
	}
}

func (d *Daemon) dailyAt() string {
	if d.DailyAt == "" {
		return "08:00"
	}
	return d.DailyAt
}

func (d *Daemon) cronSpec() (string, error) {
	hour, minute, err := config.ParseDailyAt(d.dailyAt())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

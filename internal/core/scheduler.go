package core

// scheduler.go repeats runs on a fixed interval for long-running deployments.
//
// The scheduler runs once on start and then every interval. A tick that
// finds a run already active is skipped rather than queued; other failures
// are logged and the next tick proceeds normally. Stopping the scheduler
// stops the ticks only: a run in progress finishes under its own timeout so
// its markers are flushed.

import (
	"context"
	"log/slog"
	"time"
)

// StartScheduler blocks running the pipeline every interval until ctx is
// cancelled. A non-positive interval returns immediately.
func (s *Service) StartScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	slog.Info("run scheduler started", "interval", interval.String())

	ctx = ContextWithTrigger(ctx, TriggerScheduler)
	s.runScheduled(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("run scheduler stopped")
			return
		case <-ticker.C:
			s.runScheduled(ctx)
		}
	}
}

// runScheduled performs one run without waiting for a busy slot.
func (s *Service) runScheduled(ctx context.Context) {
	if !s.gate.TryAcquire() {
		slog.Info("scheduled run skipped, a run is already active")
		return
	}
	defer s.gate.Release()

	start := time.Now()
	result, err := s.execute(context.WithoutCancel(ctx))
	if err != nil {
		return // logged and recorded by execute
	}

	slog.Info("scheduled run completed",
		"run_id", result.RunID,
		"orders_staged", result.OrdersStaged(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

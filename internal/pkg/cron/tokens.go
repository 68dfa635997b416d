package cron

import (
	"context"
	"log/slog"
	"time"
)

// TokenSweeper removes expired entries and reports how many were dropped.
type TokenSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type ResetTokenJobs struct {
	store    TokenSweeper
	interval time.Duration
}

func NewResetTokenJobs(store TokenSweeper, interval time.Duration) *ResetTokenJobs {
	return &ResetTokenJobs{store: store, interval: interval}
}

func (j *ResetTokenJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob("sweep_expired_reset_tokens", j.interval, j.SweepExpiredTokens)
}

func (j *ResetTokenJobs) SweepExpiredTokens(ctx context.Context) error {
	removed, err := j.store.Sweep(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		slog.Info("Cron: expired reset tokens removed", "count", removed)
	}
	return nil
}

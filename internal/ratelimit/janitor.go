package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"
	"go.uber.org/zap"
)

// Janitor periodically removes expired windows from stores that do not
// expire keys on their own. It must judge expiry with the same clock the
// limiter stamps windows with.
type Janitor struct {
	cron    *cron.Cron
	sweeper Sweeper
	timeout time.Duration
	now     func() time.Time
}

// NewJanitor builds a janitor reading time from now, normally Limiter.Now.
// A nil now falls back to time.Now.
func NewJanitor(sweeper Sweeper, timeout time.Duration, now func() time.Time) *Janitor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if now == nil {
		now = time.Now
	}

	return &Janitor{
		cron:    cron.New(),
		sweeper: sweeper,
		timeout: timeout,
		now:     now,
	}
}

func (j *Janitor) Start(schedule string) error {
	if err := j.cron.AddFunc(schedule, j.RunOnce); err != nil {
		return fmt.Errorf("j.cron.AddFunc(%q) -> %w", schedule, err)
	}
	j.cron.Start()

	return nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}

func (j *Janitor) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	removed, err := j.sweeper.Sweep(ctx, j.now())
	if err != nil {
		zap.L().Error("failed to sweep rate limit windows", zap.Error(err))
		return
	}

	zap.L().Debug("swept rate limit windows", zap.Int64("removed", removed))
}

package ratelimit

import (
	"context"
	"time"
)

// Window is the state of one fixed window after a Hit.
type Window struct {
	Allowed bool
	Count   int
	Start   time.Time
	ResetAt time.Time
}

// CounterStore performs the fixed-window check-and-increment as a single
// atomic step: the window is reset when now - start >= window, the hit is
// refused without counting when count >= limit, otherwise count is incremented.
type CounterStore interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Window, error)
}

// Sweeper is implemented by stores that keep expired windows around.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

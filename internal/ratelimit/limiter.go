package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
	ErrUnknownScope     = errors.New("unknown rate limit scope")
)

const defaultTimeout = 2 * time.Second

type Scope string

const (
	ScopeIdentifier Scope = "identifier"
	ScopeAddress    Scope = "address"
)

type Policy struct {
	MaxAttempts int
	Window      time.Duration
}

type Decision struct {
	Allowed    bool
	Scope      Scope
	Count      int
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type Policies map[Scope]Policy

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(l *Limiter) {
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}

// Limiter applies fixed-window policies per scope on top of a CounterStore.
// It fails closed: when the store cannot answer the hit is denied and the
// returned error wraps ErrStoreUnavailable.
type Limiter struct {
	store    CounterStore
	timeout  time.Duration
	now      func() time.Time
	policies atomic.Pointer[Policies]
}

func NewLimiter(store CounterStore, policies Policies, opts ...Option) *Limiter {
	l := &Limiter{
		store:   store,
		timeout: defaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.SetPolicies(policies)

	return l
}

// SetPolicies replaces every policy at once. A window that is already open
// keeps the end time it was opened with; the new policy applies from the
// next window for that key.
func (l *Limiter) SetPolicies(policies Policies) {
	cp := make(Policies, len(policies))
	for scope, p := range policies {
		cp[scope] = p
	}
	l.policies.Store(&cp)
}

// Now is the clock windows are stamped with.
func (l *Limiter) Now() time.Time {
	return l.now()
}

func (l *Limiter) Policy(scope Scope) (Policy, bool) {
	p, ok := (*l.policies.Load())[scope]
	return p, ok
}

func (l *Limiter) Allow(ctx context.Context, scope Scope, key string) (Decision, error) {
	policy, ok := l.Policy(scope)
	if !ok {
		return Decision{Allowed: false, Scope: scope}, fmt.Errorf("%w: %s", ErrUnknownScope, scope)
	}

	d, err := l.CheckAndIncrement(ctx, string(scope)+":"+key, policy.MaxAttempts, policy.Window)
	d.Scope = scope

	return d, err
}

func (l *Limiter) CheckAndIncrement(ctx context.Context, key string, maxAttempts int, window time.Duration) (Decision, error) {
	now := l.now()

	if maxAttempts <= 0 || window <= 0 {
		return Decision{
			Allowed:    false,
			Limit:      maxAttempts,
			ResetAt:    now.Add(window),
			RetryAfter: window,
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	w, err := l.store.Hit(ctx, key, maxAttempts, window, now)
	if err != nil {
		return Decision{Allowed: false, Limit: maxAttempts}, errors.Join(ErrStoreUnavailable, fmt.Errorf("l.store.Hit -> %w", err))
	}

	d := Decision{
		Allowed: w.Allowed,
		Count:   w.Count,
		Limit:   maxAttempts,
		ResetAt: w.ResetAt,
	}
	if !w.Allowed {
		d.RetryAfter = w.ResetAt.Sub(now)
		if d.RetryAfter < 0 {
			d.RetryAfter = 0
		}
	}

	return d, nil
}

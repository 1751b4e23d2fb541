package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type failingStore struct {
	err error
}

func (s failingStore) Hit(context.Context, string, int, time.Duration, time.Time) (Window, error) {
	return Window{}, s.err
}

type blockingStore struct{}

func (blockingStore) Hit(ctx context.Context, _ string, _ int, _ time.Duration, _ time.Time) (Window, error) {
	<-ctx.Done()
	return Window{}, ctx.Err()
}

func TestLimiter_CheckAndIncrement_WindowBoundary(t *testing.T) {
	clock := newTestClock()
	l := NewLimiter(NewMemoryStore(), nil, WithClock(clock.Now))
	ctx := context.Background()

	d, err := l.CheckAndIncrement(ctx, "123456789", 1, 300*time.Second)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)

	clock.Advance(299 * time.Second)
	d, err = l.CheckAndIncrement(ctx, "123456789", 1, 300*time.Second)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 1, d.Count, "a refused hit is not counted")
	assert.Equal(t, time.Second, d.RetryAfter)

	clock.Advance(time.Second)
	d, err = l.CheckAndIncrement(ctx, "123456789", 1, 300*time.Second)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "window elapsed, counter reset")
	assert.Equal(t, 1, d.Count)
}

func TestLimiter_CheckAndIncrement_KeysAreIndependent(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), nil)
	ctx := context.Background()

	d, err := l.CheckAndIncrement(ctx, "a", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = l.CheckAndIncrement(ctx, "b", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimiter_CheckAndIncrement_ZeroAttemptsDenies(t *testing.T) {
	l := NewLimiter(failingStore{err: errors.New("must not be called")}, nil)

	d, err := l.CheckAndIncrement(context.Background(), "a", 0, time.Minute)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestLimiter_FailsClosed(t *testing.T) {
	l := NewLimiter(failingStore{err: errors.New("connection refused")}, Policies{
		ScopeIdentifier: {MaxAttempts: 1, Window: time.Minute},
	})

	d, err := l.Allow(context.Background(), ScopeIdentifier, "123456789")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.False(t, d.Allowed)
}

func TestLimiter_TimeoutFailsClosed(t *testing.T) {
	l := NewLimiter(blockingStore{}, nil, WithTimeout(20*time.Millisecond))

	d, err := l.CheckAndIncrement(context.Background(), "a", 1, time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, d.Allowed)
}

func TestLimiter_Allow_UnknownScope(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), Policies{})

	d, err := l.Allow(context.Background(), ScopeAddress, "10.0.0.1")
	assert.ErrorIs(t, err, ErrUnknownScope)
	assert.False(t, d.Allowed)
}

func TestLimiter_Allow_ScopesDoNotShareCounters(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), Policies{
		ScopeIdentifier: {MaxAttempts: 1, Window: time.Minute},
		ScopeAddress:    {MaxAttempts: 1, Window: time.Minute},
	})
	ctx := context.Background()

	d, err := l.Allow(ctx, ScopeIdentifier, "same")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, ScopeIdentifier, d.Scope)

	d, err = l.Allow(ctx, ScopeAddress, "same")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimiter_SetPolicies(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), Policies{
		ScopeAddress: {MaxAttempts: 1, Window: time.Hour},
	})
	ctx := context.Background()

	d, err := l.Allow(ctx, ScopeAddress, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = l.Allow(ctx, ScopeAddress, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	l.SetPolicies(Policies{ScopeAddress: {MaxAttempts: 3, Window: time.Hour}})

	d, err = l.Allow(ctx, ScopeAddress, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 3, d.Limit)
}

func TestLimiter_ConcurrentHitsAdmitExactlyLimit(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), nil)

	const (
		callers = 64
		limit   = 3
	)

	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.CheckAndIncrement(context.Background(), "123456789", limit, time.Minute)
			if err == nil && d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(limit), allowed.Load())
}

func TestLimiter_SetPoliciesAppliesFromNextWindow(t *testing.T) {
	clock := newTestClock()
	l := NewLimiter(NewMemoryStore(), Policies{
		ScopeIdentifier: {MaxAttempts: 1, Window: 10 * time.Minute},
	}, WithClock(clock.Now))
	ctx := context.Background()

	d, err := l.Allow(ctx, ScopeIdentifier, "123456789")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	l.SetPolicies(Policies{ScopeIdentifier: {MaxAttempts: 1, Window: time.Minute}})

	clock.Advance(2 * time.Minute)
	d, err = l.Allow(ctx, ScopeIdentifier, "123456789")
	require.NoError(t, err)
	assert.False(t, d.Allowed, "the open window keeps its original end")
	assert.Equal(t, 8*time.Minute, d.RetryAfter)

	clock.Advance(8 * time.Minute)
	d, err = l.Allow(ctx, ScopeIdentifier, "123456789")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	clock.Advance(time.Minute)
	d, err = l.Allow(ctx, ScopeIdentifier, "123456789")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "the next window uses the new policy")
}

package ratelimit

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/callin-contest-api/internal/db"
)

func newGormStore(t *testing.T) *GormStore {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "ratelimit.db"))
	require.NoError(t, err)

	s := NewGormStore(gdb)
	require.NoError(t, s.AutoMigrate(context.Background()))

	return s
}

func TestGormStore_Hit(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	w, err := s.Hit(ctx, "identifier:123456789", 2, 5*time.Minute, now)
	require.NoError(t, err)
	assert.True(t, w.Allowed)
	assert.Equal(t, 1, w.Count)
	assert.True(t, w.ResetAt.Equal(now.Add(5*time.Minute)))

	w, err = s.Hit(ctx, "identifier:123456789", 2, 5*time.Minute, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, w.Allowed)
	assert.Equal(t, 2, w.Count)
	assert.True(t, w.Start.Equal(now), "window start is kept inside the window")

	w, err = s.Hit(ctx, "identifier:123456789", 2, 5*time.Minute, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, w.Allowed)
	assert.Equal(t, 2, w.Count)
	assert.True(t, w.ResetAt.Equal(now.Add(5*time.Minute)))

	w, err = s.Hit(ctx, "identifier:123456789", 2, 5*time.Minute, now.Add(5*time.Minute))
	require.NoError(t, err)
	assert.True(t, w.Allowed, "expired window starts over")
	assert.Equal(t, 1, w.Count)
	assert.True(t, w.Start.Equal(now.Add(5*time.Minute)))
}

func TestGormStore_Sweep(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	_, err := s.Hit(ctx, "a", 1, time.Second, now)
	require.NoError(t, err)
	_, err = s.Hit(ctx, "b", 1, time.Hour, now)
	require.NoError(t, err)

	removed, err := s.Sweep(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestGormStore_ConcurrentHitsAdmitExactlyLimit(t *testing.T) {
	s := newGormStore(t)
	l := NewLimiter(s, nil)

	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.CheckAndIncrement(context.Background(), "address:10.0.0.1", 2, time.Hour)
			if err == nil && d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(2), allowed.Load())
}

package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryWindow struct {
	count   int
	start   time.Time
	resetAt time.Time
}

// MemoryStore keeps windows in process memory. It is only shared between
// goroutines of one instance.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]memoryWindow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]memoryWindow),
	}
}

func (s *MemoryStore) Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Window, error) {
	if err := ctx.Err(); err != nil {
		return Window{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = memoryWindow{start: now, resetAt: now.Add(window)}
	}

	allowed := w.count < limit
	if allowed {
		w.count++
	}
	s.windows[key] = w

	return Window{
		Allowed: allowed,
		Count:   w.count,
		Start:   w.start,
		ResetAt: w.resetAt,
	}, nil
}

func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
			removed++
		}
	}

	return removed, nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.windows)
}

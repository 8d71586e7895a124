package ratelimit

import (
	"context"
	"sync"
	"time"
)

// rateWindow is one per-key counter.  It lives for at most one window
// length past its start before the purge pass evicts it.
type rateWindow struct {
	count       int
	windowStart time.Time
}

// MemoryStore is the in-process Store.  A single mutex guards the map so
// the read-check-increment is atomic per key; the map is small (one entry
// per active source address) and every Hit also opportunistically purges
// entries whose window has elapsed, so no background sweeper is needed.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]*rateWindow
}

// NewMemoryStore returns an empty in-process window store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, windows: make(map[string]*rateWindow)}
}

// Hit counts one request against key.  A missing or expired window starts
// fresh with count 1; otherwise the counter increments and the request is
// rejected once the post-increment count exceeds limit.
func (m *MemoryStore) Hit(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.purge(now, window)

	w, ok := m.windows[key]
	if !ok || now.Sub(w.windowStart) >= window {
		w = &rateWindow{count: 0, windowStart: now}
		m.windows[key] = w
	}
	w.count++

	resetAt := w.windowStart.Add(window)
	if w.count > limit {
		return Decision{Allowed: false, Limit: limit, Remaining: 0, RetryAfter: resetAt.Sub(now)}, nil
	}
	return Decision{Allowed: true, Limit: limit, Remaining: limit - w.count}, nil
}

// purge drops windows older than one window length.  Called with the lock
// held on every Hit; housekeeping only, never affects the caller's key.
func (m *MemoryStore) purge(now time.Time, window time.Duration) {
	for key, w := range m.windows {
		if now.Sub(w.windowStart) >= window {
			delete(m.windows, key)
		}
	}
}

// Package dedup remembers which listings were already scraped so a batch can
// skip them.
package dedup

import (
	"context"
	"sync"
	"time"
)

// Tracker records listing ids that have been scraped
type Tracker interface {
	Seen(ctx context.Context, id string) (bool, error)
	MarkSeen(ctx context.Context, id string) error
	Close() error
}

// MemoryTracker is a process-local Tracker with per-entry expiry
type MemoryTracker struct {
	ttl  time.Duration
	now  func() time.Time
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewMemoryTracker forgets ids after ttl; zero keeps them forever
func NewMemoryTracker(ttl time.Duration) *MemoryTracker {
	return &MemoryTracker{ttl: ttl, now: time.Now, seen: make(map[string]time.Time)}
}

func (m *MemoryTracker) Seen(_ context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	at, ok := m.seen[id]
	if !ok {
		return false, nil
	}
	if m.ttl > 0 && m.now().Sub(at) > m.ttl {
		delete(m.seen, id)
		return false, nil
	}
	return true, nil
}

func (m *MemoryTracker) MarkSeen(_ context.Context, id string) error {
	if id == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[id] = m.now()
	return nil
}

func (m *MemoryTracker) Close() error { return nil }

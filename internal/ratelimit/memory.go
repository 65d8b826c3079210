package ratelimit

import (
	"context"
	"sync"
	"time"

	"resumeforge/internal/errors"
)

const defaultCleanupInterval = 10 * time.Minute

// MemoryStore keeps per-key timestamps in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	hits     map[string][]time.Time
	lastSeen map[string]time.Time

	idle   time.Duration
	done   chan struct{}
	once   sync.Once
	logger *errors.Logger
}

// NewMemoryStore starts a store whose keys are dropped after idle has passed
// without a hit.
func NewMemoryStore(idle time.Duration, logger *errors.Logger) *MemoryStore {
	if idle <= 0 {
		idle = defaultCleanupInterval
	}
	if logger == nil {
		logger = errors.Discard()
	}
	s := &MemoryStore{
		hits:     make(map[string][]time.Time),
		lastSeen: make(map[string]time.Time),
		idle:     idle,
		done:     make(chan struct{}),
		logger:   logger,
	}
	go s.cleanupRoutine()
	return s
}

func (s *MemoryStore) Hit(_ context.Context, key string, now time.Time, window time.Duration, limit int) (Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	kept := s.hits[key][:0]
	for _, ts := range s.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	recorded := len(kept) < limit
	if recorded {
		kept = append(kept, now)
	}
	s.hits[key] = kept
	s.lastSeen[key] = now

	usage := Usage{Count: len(kept), Recorded: recorded, Oldest: now}
	if len(kept) > 0 {
		usage.Oldest = kept[0]
	}
	return usage, nil
}

// Keys reports how many keys are being tracked.
func (s *MemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hits)
}

func (s *MemoryStore) cleanupRoutine() {
	ticker := time.NewTicker(s.idle)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.cleanup(now)
		case <-s.done:
			return
		}
	}
}

func (s *MemoryStore) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, seen := range s.lastSeen {
		if now.Sub(seen) > s.idle {
			delete(s.hits, key)
			delete(s.lastSeen, key)
		}
	}
	s.logger.Debug("Rate limit store cleanup completed", "remaining_keys", len(s.hits))
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

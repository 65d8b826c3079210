// Package ratelimit counts client requests against fixed budgets. Counters
// live behind the Store interface so a single process can keep them in
// memory while a fleet of servers shares them through Redis.
package ratelimit

import (
	"context"
	"time"
)

// Usage describes a key's window after a hit.
type Usage struct {
	// Count is the number of hits currently inside the window.
	Count int
	// Recorded is false when the window was already full and the hit was dropped.
	Recorded bool
	// Oldest is the timestamp of the earliest hit still in the window.
	Oldest time.Time
}

// Store records hits for a key over a sliding window. A hit is only recorded
// while fewer than limit hits fall inside the window ending at now.
type Store interface {
	Hit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (Usage, error)
	Close() error
}

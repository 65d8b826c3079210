package ratelimit

import (
	"context"
	"time"

	"resumeforge/internal/errors"
)

// Decision is the outcome of a sliding window check.
type Decision struct {
	Allowed    bool          `json:"allowed"`
	Count      int           `json:"count"`
	Limit      int           `json:"limit"`
	RetryAfter time.Duration `json:"retry_after"`
}

// SlidingWindow allows limit hits per key in any span of window.
type SlidingWindow struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewSlidingWindow(store Store, limit int, window time.Duration) (*SlidingWindow, error) {
	if store == nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "rate limit store is required", nil)
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "rate limit calls and period must be positive", nil).
			WithContext("calls", limit).
			WithContext("period", window.String())
	}
	return &SlidingWindow{store: store, limit: limit, window: window, now: time.Now}, nil
}

// Allow records a hit for key. When the store fails the request is allowed
// and the store error is returned alongside the decision.
func (w *SlidingWindow) Allow(ctx context.Context, key string) (Decision, error) {
	now := w.now()
	usage, err := w.store.Hit(ctx, key, now, w.window, w.limit)
	if err != nil {
		return Decision{Allowed: true, Limit: w.limit}, err
	}

	d := Decision{Allowed: usage.Recorded, Count: usage.Count, Limit: w.limit}
	if !d.Allowed {
		d.RetryAfter = usage.Oldest.Add(w.window).Sub(now)
		if d.RetryAfter < time.Second {
			d.RetryAfter = time.Second
		}
	}
	return d, nil
}

func (w *SlidingWindow) Limit() int { return w.limit }

func (w *SlidingWindow) Window() time.Duration { return w.window }

func (w *SlidingWindow) Close() error { return w.store.Close() }

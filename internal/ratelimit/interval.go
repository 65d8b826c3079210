package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"resumeforge/internal/errors"
)

// IntervalLimiter enforces a minimum gap between requests per key.
type IntervalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	interval time.Duration
	limit    rate.Limit
	done     chan struct{}
	once     sync.Once
	logger   *errors.Logger
}

// NewIntervalLimiter allows one request per key every minInterval.
func NewIntervalLimiter(minInterval time.Duration, logger *errors.Logger) *IntervalLimiter {
	if logger == nil {
		logger = errors.Discard()
	}
	l := &IntervalLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		interval: minInterval,
		limit:    rate.Every(minInterval),
		done:     make(chan struct{}),
		logger:   logger,
	}

	go l.cleanupRoutine(defaultCleanupInterval)
	return l
}

func (l *IntervalLimiter) limiter(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(l.limit, 1)
		l.limiters[key] = limiter
	}
	l.lastSeen[key] = now
	return limiter
}

// Allow reports whether key may proceed now.
func (l *IntervalLimiter) Allow(key string) bool {
	return l.AllowAt(key, time.Now())
}

// AllowAt is Allow with an explicit clock reading.
func (l *IntervalLimiter) AllowAt(key string, now time.Time) bool {
	if l.interval <= 0 {
		return true
	}
	return l.limiter(key, now).AllowN(now, 1)
}

// Stats describes the limiter for the stats endpoint.
func (l *IntervalLimiter) Stats() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()

	return map[string]any{
		"active_limiters":      len(l.limiters),
		"min_interval_seconds": l.interval.Seconds(),
		"burst_capacity":       1,
	}
}

func (l *IntervalLimiter) cleanupRoutine(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			l.cleanup(now, every)
		case <-l.done:
			return
		}
	}
}

func (l *IntervalLimiter) cleanup(now time.Time, evictionAge time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, seen := range l.lastSeen {
		if now.Sub(seen) > evictionAge {
			delete(l.limiters, key)
			delete(l.lastSeen, key)
		}
	}
	l.logger.Debug("Interval limiter cleanup completed", "remaining_limiters", len(l.limiters))
}

// Close stops the cleanup goroutine.
func (l *IntervalLimiter) Close() {
	l.once.Do(func() { close(l.done) })
}

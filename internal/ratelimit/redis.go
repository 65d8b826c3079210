package ratelimit

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"resumeforge/internal/errors"
)

// slidingWindowScript prunes, conditionally records and reports a key in one
// round trip. Scores are microseconds since the epoch and are passed as
// strings so Lua never formats them.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[2])
local count = redis.call('ZCARD', key)
local recorded = 0
if count < limit then
	redis.call('ZADD', key, ARGV[1], ARGV[4])
	count = count + 1
	recorded = 1
end
redis.call('PEXPIRE', key, ARGV[5])

local oldest = ARGV[1]
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
	oldest = first[2]
end
return {count, recorded, oldest}
`)

// BreakerSettings tunes the circuit breaker in front of Redis.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// DefaultBreakerSettings trips after three requests when at least half failed.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.5,
	}
}

// RedisOptions locates the Redis server.
type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	Prefix      string
	DialTimeout time.Duration
	Breaker     BreakerSettings
}

// RedisStore keeps windows in sorted sets so several servers share budgets.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	seq    atomic.Uint64
	cb     *gobreaker.CircuitBreaker[Usage]
	logger *errors.Logger
}

// NewRedisStore connects lazily; no command is sent until the first hit.
func NewRedisStore(opts RedisOptions, logger *errors.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
		MaxRetries:  -1,
	})
	return NewRedisStoreWithClient(client, opts.Prefix, opts.Breaker, logger)
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, prefix string, bs BreakerSettings, logger *errors.Logger) *RedisStore {
	if logger == nil {
		logger = errors.Discard()
	}
	if prefix == "" {
		prefix = "resumeforge:ratelimit:"
	}
	if bs.MinRequests == 0 {
		bs = DefaultBreakerSettings()
	}

	settings := gobreaker.Settings{
		Name:        "ratelimit-redis",
		MaxRequests: bs.MaxRequests,
		Interval:    bs.Interval,
		Timeout:     bs.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= bs.MinRequests && failureRatio >= bs.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &RedisStore{
		client: client,
		prefix: prefix,
		cb:     gobreaker.NewCircuitBreaker[Usage](settings),
		logger: logger,
	}
}

func (s *RedisStore) Hit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (Usage, error) {
	usage, err := s.cb.Execute(func() (Usage, error) {
		return s.hit(ctx, key, now, window, limit)
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return Usage{}, errors.NewNetworkError(errors.ErrCodeStoreUnavailable, "rate limit store circuit open", err)
		}
		return Usage{}, errors.NewNetworkError(errors.ErrCodeStoreUnavailable, "rate limit store request failed", err)
	}
	return usage, nil
}

func (s *RedisStore) hit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (Usage, error) {
	nowMicros := now.UnixMicro()
	member := fmt.Sprintf("%d-%d", nowMicros, s.seq.Add(1))

	ttl := window.Milliseconds()
	if ttl < 1 {
		ttl = 1
	}
	res, err := slidingWindowScript.Run(ctx, s.client,
		[]string{s.prefix + key},
		strconv.FormatInt(nowMicros, 10),
		strconv.FormatInt(nowMicros-window.Microseconds(), 10),
		limit,
		member,
		ttl,
	).Slice()
	if err != nil {
		return Usage{}, err
	}
	if len(res) != 3 {
		return Usage{}, fmt.Errorf("unexpected script reply with %d values", len(res))
	}

	count, err := replyInt(res[0])
	if err != nil {
		return Usage{}, err
	}
	recorded, err := replyInt(res[1])
	if err != nil {
		return Usage{}, err
	}
	oldest, err := replyInt(res[2])
	if err != nil {
		return Usage{}, err
	}
	return Usage{
		Count:    int(count),
		Recorded: recorded == 1,
		Oldest:   time.UnixMicro(oldest),
	}, nil
}

func replyInt(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(n, 64)
		return int64(f), err
	default:
		return 0, fmt.Errorf("unexpected script reply type %T", v)
	}
}

// BreakerState reports the circuit breaker state name.
func (s *RedisStore) BreakerState() string {
	return s.cb.State().String()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

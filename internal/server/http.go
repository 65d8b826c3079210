// Package server exposes document generation over HTTP.
package server

import (
	"time"

	"resumeforge/internal/assets"
	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/observability"
	"resumeforge/internal/ratelimit"
	"resumeforge/internal/resume"
	"resumeforge/internal/templates"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Request size limit
	MaxRequestSize int64

	SlowRequestThreshold time.Duration
	Production           bool
	Debug                bool

	// Rate limiting
	RateLimit       *config.RateLimitConfig
	RateLimiter     *ratelimit.SlidingWindow
	GenerateLimiter *ratelimit.IntervalLimiter

	Resumes      *templates.Registry[*resume.Resume]
	CoverLetters *templates.Registry[*resume.CoverLetter]
	Assets       *assets.Store

	Observability *observability.ObservabilityManager

	// Logger
	Logger *errors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host                 string
	Port                 string
	Version              string
	APIKeys              []string
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	ShutdownTimeout      time.Duration
	MaxRequestSize       int64
	SlowRequestThreshold time.Duration
	Production           bool
	Debug                bool
	RateLimit            *config.RateLimitConfig
	Redis                config.RedisConfig

	// RateLimitStore replaces the store selected by RateLimit.Store.
	RateLimitStore ratelimit.Store

	Assets        *assets.Store
	Observability *observability.ObservabilityManager
}

// NewServerConfig copies the server relevant parts of cfg.
func NewServerConfig(cfg *config.Config, version string) ServerConfig {
	rl := cfg.Server.RateLimit
	return ServerConfig{
		Host:                 cfg.Server.Host,
		Port:                 cfg.Server.Port,
		Version:              version,
		APIKeys:              cfg.Server.APIKeys,
		ReadTimeout:          cfg.Server.ReadTimeout,
		WriteTimeout:         cfg.Server.WriteTimeout,
		IdleTimeout:          cfg.Server.IdleTimeout,
		ShutdownTimeout:      cfg.Server.ShutdownTimeout,
		MaxRequestSize:       cfg.App.MaxRequestSize,
		SlowRequestThreshold: cfg.App.SlowRequestThreshold,
		Production:           cfg.App.IsProduction(),
		Debug:                cfg.App.Debug,
		RateLimit:            &rl,
		Redis:                cfg.Server.Redis,
	}
}

const (
	defaultShutdownTimeout      = 30 * time.Second
	defaultSlowRequestThreshold = 5 * time.Second
)

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *errors.Logger) (*Server, error) {
	if logger == nil {
		logger = errors.Discard()
	}

	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	s := &Server{
		Host:                 cfg.Host,
		Port:                 cfg.Port,
		Version:              cfg.Version,
		AppConfig:            appCfg,
		APIKeys:              apiKeyMap,
		ReadTimeout:          cfg.ReadTimeout,
		WriteTimeout:         cfg.WriteTimeout,
		IdleTimeout:          cfg.IdleTimeout,
		ShutdownTimeout:      cfg.ShutdownTimeout,
		MaxRequestSize:       cfg.MaxRequestSize,
		SlowRequestThreshold: cfg.SlowRequestThreshold,
		Production:           cfg.Production,
		Debug:                cfg.Debug,
		RateLimit:            cfg.RateLimit,
		Resumes:              templates.Resumes(cfg.Assets),
		CoverLetters:         templates.CoverLetters(),
		Assets:               cfg.Assets,
		Observability:        cfg.Observability,
		Logger:               logger,
	}
	if s.ShutdownTimeout <= 0 {
		s.ShutdownTimeout = defaultShutdownTimeout
	}
	if s.SlowRequestThreshold <= 0 {
		s.SlowRequestThreshold = defaultSlowRequestThreshold
	}

	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		store := cfg.RateLimitStore
		if store == nil {
			store = newRateLimitStore(cfg.RateLimit.Store, cfg.Redis, logger)
		}
		window, err := ratelimit.NewSlidingWindow(store, cfg.RateLimit.Calls, cfg.RateLimit.Period)
		if err != nil {
			return nil, err
		}
		s.RateLimiter = window
		s.GenerateLimiter = ratelimit.NewIntervalLimiter(cfg.RateLimit.MinInterval, logger)
	}

	return s, nil
}

func newRateLimitStore(kind string, rc config.RedisConfig, logger *errors.Logger) ratelimit.Store {
	if kind != "redis" {
		return ratelimit.NewMemoryStore(0, logger)
	}
	cb := rc.CircuitBreaker
	logger.Info("Using Redis rate limit store", "addr", rc.Addr, "db", rc.DB)
	return ratelimit.NewRedisStore(ratelimit.RedisOptions{
		Addr:        rc.Addr,
		Password:    rc.Password,
		DB:          rc.DB,
		Prefix:      rc.Prefix,
		DialTimeout: rc.DialTimeout,
		Breaker: ratelimit.BreakerSettings{
			MaxRequests:      cb.MaxRequests,
			Interval:         cb.Interval,
			Timeout:          cb.Timeout,
			MinRequests:      cb.MinRequests,
			FailureThreshold: cb.FailureThreshold,
		},
	}, logger)
}

// Close releases the rate limiters.
func (s *Server) Close() {
	if s.RateLimiter != nil {
		if err := s.RateLimiter.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close rate limit store")
		}
	}
	if s.GenerateLimiter != nil {
		s.GenerateLimiter.Close()
	}
	s.Logger.Info("Rate limiter cleaned up")
}

package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads.
const EnvPrefix = "RESUMEFORGE"

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (RESUMEFORGE_SERVER_APIKEYS, also read from .env)
// 4. Default values - Lowest priority
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Assets        AssetsConfig        `mapstructure:"assets"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel             string        `mapstructure:"logLevel"`
	Environment          string        `mapstructure:"environment"` // development or production
	Debug                bool          `mapstructure:"debug"`
	MaxRequestSize       int64         `mapstructure:"maxRequestSize"` // bytes
	DefaultTemplate      string        `mapstructure:"defaultTemplate"`
	DefaultPageSize      string        `mapstructure:"defaultPageSize"`
	DefaultReportFormat  string        `mapstructure:"defaultReportFormat"`
	SupportedFormats     []string      `mapstructure:"supportedFormats"`
	OutputDir            string        `mapstructure:"outputDir"`
	SlowRequestThreshold time.Duration `mapstructure:"slowRequestThreshold"`
}

// IsProduction reports whether the app runs with production hardening.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Environment, "production")
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout     time.Duration `mapstructure:"idleTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"` // Valid API keys for authentication

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Calls       int           `mapstructure:"calls"`       // Requests allowed per period
	Period      time.Duration `mapstructure:"period"`      // Sliding window length
	Store       string        `mapstructure:"store"`       // memory or redis
	MinInterval time.Duration `mapstructure:"minInterval"` // Gap between generations per client
	ByIP        bool          `mapstructure:"byIP"`
	ByAPIKey    bool          `mapstructure:"byAPIKey"`
}

// RedisConfig locates the shared rate limit store
type RedisConfig struct {
	Addr           string               `mapstructure:"addr"`
	Password       string               `mapstructure:"password"`
	DB             int                  `mapstructure:"db"`
	Prefix         string               `mapstructure:"prefix"`
	DialTimeout    time.Duration        `mapstructure:"dialTimeout"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// AssetsConfig points at template background images
type AssetsConfig struct {
	Dir      string        `mapstructure:"dir"`
	Watch    bool          `mapstructure:"watch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig switches groups of application metrics on and off
type CustomMetricsConfig struct {
	Generation     GenerationMetricsConfig     `mapstructure:"generation"`
	Infrastructure InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

type GenerationMetricsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	TrackDuration bool `mapstructure:"trackDuration"`
	TrackLayout   bool `mapstructure:"trackLayout"` // pages and warnings
}

type InfrastructureMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadOptions tweaks where LoadConfig looks for its sources.
type LoadOptions struct {
	// ConfigFile is an explicit config path; the search paths are used when empty.
	ConfigFile string
	// EnvFile is a dotenv file loaded before reading the environment.
	EnvFile string
}

// LoadConfig loads configuration from the default locations
func LoadConfig() (*Config, error) {
	return Load(LoadOptions{EnvFile: ".env"})
}

// Load loads configuration from a dotenv file, environment variables and a config file
func Load(opts LoadOptions) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Printf("[CONFIG] Configured environment variable handling with prefix '%s'", EnvPrefix)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		log.Printf("[CONFIG] Using explicit config file: %s", opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/resumeforge/")
		v.AddConfigPath("$HOME/.resumeforge")
		v.AddConfigPath(".")
		log.Println("[CONFIG] Configured config file search paths: /etc/resumeforge/, $HOME/.resumeforge, .")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	config.applyFallbacks()
	log.Println("[CONFIG] Applied configuration fallbacks and environment variable overrides")

	config.logConfigurationSources(configFileUsed)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// loadEnvFile reads a dotenv file without overriding variables already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	log.Printf("[CONFIG] Loaded environment file: %s", path)
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.App.MaxRequestSize <= 0 {
		return fmt.Errorf("app maxRequestSize must be positive")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultReportFormat] {
		return fmt.Errorf("invalid default report format: %s", c.App.DefaultReportFormat)
	}

	switch strings.ToLower(c.App.Environment) {
	case "development", "production":
	default:
		return fmt.Errorf("invalid environment: %s (must be 'development' or 'production')", c.App.Environment)
	}

	return c.validateRateLimit()
}

func (c *Config) validateRateLimit() error {
	rl := c.Server.RateLimit
	if !rl.Enabled {
		return nil
	}
	if rl.Calls <= 0 {
		return fmt.Errorf("rate limit calls must be positive")
	}
	if rl.Period <= 0 {
		return fmt.Errorf("rate limit period must be positive")
	}
	if rl.MinInterval < 0 {
		return fmt.Errorf("rate limit minInterval cannot be negative")
	}

	switch rl.Store {
	case "memory":
	case "redis":
		if c.Server.Redis.Addr == "" {
			return fmt.Errorf("redis address is required when the rate limit store is redis")
		}
		cb := c.Server.Redis.CircuitBreaker
		if cb.FailureThreshold <= 0 || cb.FailureThreshold > 1 {
			return fmt.Errorf("redis circuit breaker failureThreshold must be in (0, 1]")
		}
	default:
		return fmt.Errorf("invalid rate limit store: %s (must be 'memory' or 'redis')", rl.Store)
	}
	return nil
}

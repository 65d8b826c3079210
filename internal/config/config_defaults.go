package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.maxRequestSize", 50*1024*1024) // 50MB
	v.SetDefault("app.defaultTemplate", "modern")
	v.SetDefault("app.defaultPageSize", "A4")
	v.SetDefault("app.defaultReportFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.outputDir", ".")
	v.SetDefault("app.slowRequestThreshold", 5*time.Second)

	// Server Configuration
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second) // large documents take a while to render
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.shutdownTimeout", 30*time.Second)
	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})

	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", true)
	v.SetDefault("server.rateLimit.calls", 100)
	v.SetDefault("server.rateLimit.period", 60*time.Second)
	v.SetDefault("server.rateLimit.store", "memory")
	v.SetDefault("server.rateLimit.minInterval", 5*time.Second)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)

	// Redis defaults for the shared rate limit store
	v.SetDefault("server.redis.addr", "localhost:6379")
	v.SetDefault("server.redis.password", "")
	v.SetDefault("server.redis.db", 0)
	v.SetDefault("server.redis.prefix", "resumeforge:ratelimit:")
	v.SetDefault("server.redis.dialTimeout", 2*time.Second)
	v.SetDefault("server.redis.circuitBreaker.maxRequests", 1)
	v.SetDefault("server.redis.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("server.redis.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("server.redis.circuitBreaker.minRequests", 3)
	v.SetDefault("server.redis.circuitBreaker.failureThreshold", 0.5)

	// Template assets
	v.SetDefault("assets.dir", "")
	v.SetDefault("assets.watch", true)
	v.SetDefault("assets.debounce", time.Second)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.redis", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumeforge")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.generation.enabled", true)
	v.SetDefault("observability.customMetrics.generation.trackDuration", true)
	v.SetDefault("observability.customMetrics.generation.trackLayout", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)

	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}

package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyAppDefaults()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks normalizes the key list, which may arrive as one
// comma-separated environment value
func (c *Config) applyServerAPIKeyFallbacks() {
	c.Server.APIKeys = splitList(strings.Join(c.Server.APIKeys, ","))
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv(EnvPrefix + "_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitList(apiKeysEnv)
		}
	}
}

func (c *Config) applyAppDefaults() {
	c.App.Environment = strings.ToLower(c.App.Environment)
	if c.App.Debug && c.App.LogLevel == "info" {
		c.App.LogLevel = "debug"
	}
	c.Server.RateLimit.Store = strings.ToLower(c.Server.RateLimit.Store)
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		EnvPrefix + "_SERVER_APIKEYS",
		EnvPrefix + "_SERVER_PORT",
		EnvPrefix + "_SERVER_HOST",
		EnvPrefix + "_SERVER_REDIS_ADDR",
		EnvPrefix + "_SERVER_REDIS_PASSWORD",
		EnvPrefix + "_APP_LOGLEVEL",
		EnvPrefix + "_APP_ENVIRONMENT",
		EnvPrefix + "_ASSETS_DIR",
		EnvPrefix + "_VAULT_ENABLED",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if isSensitive(envVar) {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] Environment: %s", c.App.Environment)
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	if len(c.Server.APIKeys) > 0 {
		log.Printf("[CONFIG] API Keys: ***CONFIGURED*** (%d)", len(c.Server.APIKeys))
	} else {
		log.Println("[CONFIG] API Keys: ***NOT SET*** (authentication disabled)")
	}
	log.Printf("[CONFIG] Rate Limit: enabled=%t calls=%d period=%s store=%s",
		c.Server.RateLimit.Enabled, c.Server.RateLimit.Calls, c.Server.RateLimit.Period, c.Server.RateLimit.Store)
	log.Printf("[CONFIG] Default Template: %s (%s)", c.App.DefaultTemplate, c.App.DefaultPageSize)
	log.Printf("[CONFIG] Assets Dir: %s", c.Assets.Dir)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Println("[CONFIG] =====================================")
}

func isSensitive(envVar string) bool {
	lower := strings.ToLower(envVar)
	return strings.Contains(lower, "key") || strings.Contains(lower, "password") || strings.Contains(lower, "token")
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file, applies defaults, and
// validates the result. Environment variables are not consulted; use
// LoadWithEnvOverrides for that.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the naming convention
// BEACON_SECTION_FIELD (e.g., BEACON_SERVER_LISTEN_ADDRESS) and always
// take precedence over file values.
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies BEACON_* environment variables to cfg.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	setString("BEACON_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	setDuration("BEACON_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("BEACON_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	setDuration("BEACON_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Gate overrides
	if val := os.Getenv("BEACON_GATE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Gate.Enabled = &b
		}
	}
	setInt("BEACON_GATE_REQUESTS_PER_MINUTE", &cfg.Gate.RateLimits.RequestsPerMinute)
	setInt("BEACON_GATE_REQUESTS_PER_HOUR", &cfg.Gate.RateLimits.RequestsPerHour)
	setInt("BEACON_GATE_REQUESTS_PER_DAY", &cfg.Gate.RateLimits.RequestsPerDay)
	setInt("BEACON_GATE_CACHE_CAPACITY", &cfg.Gate.Cache.Capacity)
	setDuration("BEACON_GATE_CACHE_TTL", &cfg.Gate.Cache.TTL)
	setFloat("BEACON_GATE_DAILY_LIMIT", &cfg.Gate.Budget.DailyLimit)
	setFloat("BEACON_GATE_MONTHLY_LIMIT", &cfg.Gate.Budget.MonthlyLimit)
	setFloat("BEACON_GATE_TENANT_DAILY_LIMIT", &cfg.Gate.Budget.TenantDailyLimit)
	setFloat("BEACON_GATE_COST_PER_1K_TOKENS", &cfg.Gate.Pricing.CostPer1KTokens)
	setString("BEACON_GATE_USAGE_DB", &cfg.Gate.UsageDB)

	// Provider overrides. The API key in particular should come from the
	// environment rather than the config file.
	setString("BEACON_PROVIDER_BASE_URL", &cfg.Provider.BaseURL)
	setString("BEACON_PROVIDER_API_KEY", &cfg.Provider.APIKey)
	setString("BEACON_PROVIDER_MODEL", &cfg.Provider.Model)
	setDuration("BEACON_PROVIDER_TIMEOUT", &cfg.Provider.Timeout)
	setInt("BEACON_PROVIDER_MAX_RETRIES", &cfg.Provider.MaxRetries)

	// Telemetry overrides
	setString("BEACON_LOG_LEVEL", &cfg.Telemetry.Logging.Level)
	setString("BEACON_LOG_FORMAT", &cfg.Telemetry.Logging.Format)
}

func setString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func setFloat(key string, dst *float64) {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

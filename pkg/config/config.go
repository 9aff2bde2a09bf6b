package config

import (
	"time"

	"hearth-hq/beacon/pkg/provider"
	"hearth-hq/beacon/pkg/telemetry/logging"
)

// Config is the root configuration for the beacon service.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server"`

	// Gate configures the request admission pipeline.
	Gate GateConfig `yaml:"gate"`

	// Provider configures the upstream completion API client.
	Provider provider.Config `yaml:"provider"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// ListenAddress is the address to bind (e.g., ":8080").
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum keep-alive wait between requests.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown on exit.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GateConfig configures the admission pipeline.
type GateConfig struct {
	// Enabled is the assistant feature flag. Defaults to true; set to
	// false to reject every assistant request up front.
	Enabled *bool `yaml:"enabled"`

	// RateLimits configures per-caller request count ceilings.
	RateLimits RateLimitsConfig `yaml:"rate_limits"`

	// Cache configures the response cache.
	Cache CacheConfig `yaml:"cache"`

	// Budget configures spend ceilings.
	Budget BudgetConfig `yaml:"budget"`

	// Tokens configures the heuristic token estimator.
	Tokens TokensConfig `yaml:"tokens"`

	// Pricing configures token-to-USD conversion.
	Pricing PricingConfig `yaml:"pricing"`

	// SweepInterval is how often expired entries and idle windows are
	// swept in the background.
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// UsageDB is the SQLite file for usage records. Empty keeps usage
	// history in memory only.
	UsageDB string `yaml:"usage_db"`
}

// IsEnabled reports the effective feature-flag state.
func (g GateConfig) IsEnabled() bool {
	return g.Enabled == nil || *g.Enabled
}

// RateLimitsConfig configures per-caller request windows. Zero means
// unlimited for that window.
type RateLimitsConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerHour   int `yaml:"requests_per_hour"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	// Capacity is the maximum number of cached responses.
	Capacity int `yaml:"capacity"`

	// TTL is how long a cached response stays valid.
	TTL time.Duration `yaml:"ttl"`
}

// BudgetConfig configures spend ceilings in USD. Zero means unlimited.
type BudgetConfig struct {
	DailyLimit       float64 `yaml:"daily_limit"`
	MonthlyLimit     float64 `yaml:"monthly_limit"`
	TenantDailyLimit float64 `yaml:"tenant_daily_limit"`
}

// TokensConfig configures the heuristic token estimator.
type TokensConfig struct {
	// CharsPerToken is the average characters-per-token ratio.
	CharsPerToken float64 `yaml:"chars_per_token"`
}

// PricingConfig configures token-to-USD conversion.
type PricingConfig struct {
	// CostPer1KTokens is the USD price of 1000 tokens.
	CostPer1KTokens float64 `yaml:"cost_per_1k_tokens"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	// Logging configures the structured logger.
	Logging logging.Config `yaml:"logging"`

	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool `yaml:"metrics_enabled"`
}

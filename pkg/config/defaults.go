package config

import (
	"time"

	"hearth-hq/beacon/pkg/processing/costs"
	"hearth-hq/beacon/pkg/processing/tokens"
)

// Default values applied to unset fields.
const (
	DefaultListenAddress   = ":8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultRequestsPerMinute = 10
	DefaultRequestsPerHour   = 100
	DefaultRequestsPerDay    = 500

	DefaultCacheCapacity = 1000
	DefaultCacheTTL      = 24 * time.Hour

	DefaultDailyLimit   = 1.00
	DefaultMonthlyLimit = 20.00

	DefaultSweepInterval = time.Minute

	DefaultProviderTimeout    = 30 * time.Second
	DefaultProviderMaxRetries = 2
)

// ApplyDefaults fills unset configuration fields with defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Gate.RateLimits == (RateLimitsConfig{}) {
		cfg.Gate.RateLimits = RateLimitsConfig{
			RequestsPerMinute: DefaultRequestsPerMinute,
			RequestsPerHour:   DefaultRequestsPerHour,
			RequestsPerDay:    DefaultRequestsPerDay,
		}
	}
	if cfg.Gate.Cache.Capacity <= 0 {
		cfg.Gate.Cache.Capacity = DefaultCacheCapacity
	}
	if cfg.Gate.Cache.TTL <= 0 {
		cfg.Gate.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Gate.Budget == (BudgetConfig{}) {
		cfg.Gate.Budget = BudgetConfig{
			DailyLimit:   DefaultDailyLimit,
			MonthlyLimit: DefaultMonthlyLimit,
		}
	}
	if cfg.Gate.Tokens.CharsPerToken <= 0 {
		cfg.Gate.Tokens.CharsPerToken = tokens.DefaultCharsPerToken
	}
	if cfg.Gate.Pricing.CostPer1KTokens <= 0 {
		cfg.Gate.Pricing.CostPer1KTokens = costs.DefaultCostPer1KTokens
	}
	if cfg.Gate.SweepInterval <= 0 {
		cfg.Gate.SweepInterval = DefaultSweepInterval
	}

	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "upstream"
	}
	if cfg.Provider.Timeout <= 0 {
		cfg.Provider.Timeout = DefaultProviderTimeout
	}
	if cfg.Provider.MaxRetries == 0 {
		cfg.Provider.MaxRetries = DefaultProviderMaxRetries
	}
}

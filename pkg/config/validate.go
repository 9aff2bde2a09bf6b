package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for values that cannot work at runtime.
func Validate(cfg *Config) error {
	var problems []string

	if cfg.Server.ListenAddress == "" {
		problems = append(problems, "server.listen_address must not be empty")
	}

	if cfg.Gate.RateLimits.RequestsPerMinute < 0 ||
		cfg.Gate.RateLimits.RequestsPerHour < 0 ||
		cfg.Gate.RateLimits.RequestsPerDay < 0 {
		problems = append(problems, "gate.rate_limits values must not be negative")
	}
	if cfg.Gate.Cache.Capacity < 0 {
		problems = append(problems, "gate.cache.capacity must not be negative")
	}
	if cfg.Gate.Cache.TTL < 0 {
		problems = append(problems, "gate.cache.ttl must not be negative")
	}
	if cfg.Gate.Budget.DailyLimit < 0 ||
		cfg.Gate.Budget.MonthlyLimit < 0 ||
		cfg.Gate.Budget.TenantDailyLimit < 0 {
		problems = append(problems, "gate.budget limits must not be negative")
	}
	if cfg.Gate.Budget.MonthlyLimit > 0 && cfg.Gate.Budget.DailyLimit > cfg.Gate.Budget.MonthlyLimit {
		problems = append(problems, "gate.budget.daily_limit must not exceed gate.budget.monthly_limit")
	}
	if cfg.Gate.Pricing.CostPer1KTokens < 0 {
		problems = append(problems, "gate.pricing.cost_per_1k_tokens must not be negative")
	}

	if cfg.Provider.BaseURL == "" {
		problems = append(problems, "provider.base_url must not be empty")
	}
	if cfg.Provider.Model == "" {
		problems = append(problems, "provider.model must not be empty")
	}
	if cfg.Provider.MaxRetries < 0 {
		problems = append(problems, "provider.max_retries must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hearth-hq/beacon/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, apply defaults and environment overrides,
and report whether the result is valid, without starting the service.

Examples:
  # Validate the default config file
  beacon validate

  # Validate a specific file
  beacon validate --config /etc/beacon/beacon.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithEnvOverrides(cfgFile)
		if err != nil {
			return err
		}

		fmt.Println("✓ Configuration valid")
		if verbose {
			fmt.Printf("  listen address:  %s\n", cfg.Server.ListenAddress)
			fmt.Printf("  provider:        %s (%s)\n", cfg.Provider.Name, cfg.Provider.Model)
			fmt.Printf("  rate limits:     %d/min %d/hour %d/day\n",
				cfg.Gate.RateLimits.RequestsPerMinute,
				cfg.Gate.RateLimits.RequestsPerHour,
				cfg.Gate.RateLimits.RequestsPerDay)
			fmt.Printf("  budgets:         $%.2f/day $%.2f/month\n",
				cfg.Gate.Budget.DailyLimit, cfg.Gate.Budget.MonthlyLimit)
			fmt.Printf("  cache:           %d entries, ttl %s\n",
				cfg.Gate.Cache.Capacity, cfg.Gate.Cache.TTL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

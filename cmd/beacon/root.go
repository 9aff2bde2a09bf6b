package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "beacon",
	Short: "Beacon - AI assistant gate for the Hearth family organizer",
	Long: `Beacon gates the Hearth family organizer's AI assistant features.

Every assistant request passes through per-member rate limits, household
budget ceilings, and a content-addressed response cache before any call
reaches the paid completion API:

  - Per-member request ceilings per minute, hour, and day
  - Daily and monthly USD budgets per member and per household
  - Deduplication of identical requests via a response cache
  - A single upstream completion provider with retry and error taxonomy`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "beacon.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

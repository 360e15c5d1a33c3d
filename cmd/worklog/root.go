package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LipeSan/worklog-web-app/internal/config"
	"github.com/LipeSan/worklog-web-app/internal/logger"
)

// Global flags.
var (
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:   "worklog",
	Short: "Freelancer work session ledger",
	Long: `worklog records work sessions, prices them at the hourly rate in force when
they were logged, and summarizes them per fortnightly payroll period.

Examples:
  worklog serve
  worklog periods --date "last friday"
  worklog login --email jane@example.com
  worklog entries add --project Website --start 09:00 --end 12:30
  worklog entries list --from 2026-10-12`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "config/local.yaml", "Path to configuration file")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

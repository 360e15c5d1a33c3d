package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LipeSan/worklog-web-app/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := db.SchemaVersion(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s schema version %d at %s\n",
		currentStyle.Render("✓"), version, mutedStyle.Render(cfg.StoragePath))
	return nil
}

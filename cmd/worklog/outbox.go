package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LipeSan/worklog-web-app/internal/database"
	"github.com/LipeSan/worklog-web-app/internal/mailer"
)

var outboxFlagBatch int

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Print and clear pending e-mail",
	Long: `Deliver pending e-mail such as password reset links by printing it to the
terminal. Messages are marked sent once printed.`,
	Args: cobra.NoArgs,
	RunE: runOutbox,
}

func init() {
	outboxCmd.Flags().IntVarP(&outboxFlagBatch, "batch", "b", 50, "Maximum number of messages to deliver")
	rootCmd.AddCommand(outboxCmd)
}

func runOutbox(cmd *cobra.Command, args []string) error {
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

	outbox := mailer.NewOutbox(db.DB, log.Logger)
	res, err := outbox.Drain(context.Background(), mailer.NewWriterSender(cmd.OutOrStdout()), outboxFlagBatch)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s sent, %s failed\n",
		currentStyle.Render(fmt.Sprint(res.Sent)), errorStyle.Render(fmt.Sprint(res.Failed)))
	return nil
}

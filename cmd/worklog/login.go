package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	loginFlagEmail    string
	loginFlagPassword string
	loginFlagRemember bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to a worklog server",
	Long: `Sign in and store the session token for the entries commands.
The password may also be supplied through WORKLOG_PASSWORD.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginFlagEmail, "email", "e", "", "Account e-mail")
	loginCmd.Flags().StringVarP(&loginFlagPassword, "password", "p", "", "Account password")
	loginCmd.Flags().BoolVar(&loginFlagRemember, "remember", false, "Keep the session for 30 days")
	loginCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	password := loginFlagPassword
	if password == "" {
		password = os.Getenv("WORKLOG_PASSWORD")
	}
	if password == "" {
		return errors.New("password is required (--password or WORKLOG_PASSWORD)")
	}

	c, err := newClient(cfg, false)
	if err != nil {
		return err
	}
	resp, err := c.Login(context.Background(), loginFlagEmail, password, loginFlagRemember)
	if err != nil {
		return err
	}
	if err := saveSession(resp.Token); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Logged in as %s, session expires %s\n",
		currentStyle.Render("✓"), resp.User.FullName, humanize.Time(resp.ExpiresAt))
	return nil
}

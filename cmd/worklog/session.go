package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/client"
	"github.com/LipeSan/worklog-web-app/internal/config"
)

var flagServer string

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Base URL of a running worklog server (default from config)")
}

func sessionPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join(config.AppName, "session"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve session file: %w", err)
	}
	return path, nil
}

func saveSession(token string) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func loadSession() (string, error) {
	path, err := sessionPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", errors.New("not logged in, run `worklog login` first")
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func serverURL(cfg *config.Config) string {
	if flagServer != "" {
		return flagServer
	}
	return "http://" + cfg.HTTP.Addr()
}

// newClient builds an API client, attaching the saved session when authenticated is set.
func newClient(cfg *config.Config, authenticated bool) (*client.APIClient, error) {
	c := client.NewAPIClient(serverURL(cfg), 10*time.Second, zap.NewNop())
	if authenticated {
		token, err := loadSession()
		if err != nil {
			return nil, err
		}
		c.SetToken(token)
	}
	return c, nil
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/auth"
	"github.com/LipeSan/worklog-web-app/internal/database"
	"github.com/LipeSan/worklog-web-app/internal/handler"
	"github.com/LipeSan/worklog-web-app/internal/mailer"
	"github.com/LipeSan/worklog-web-app/internal/repository"
	"github.com/LipeSan/worklog-web-app/internal/router"
	"github.com/LipeSan/worklog-web-app/internal/server"
	"github.com/LipeSan/worklog-web-app/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize logger
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting worklog",
		zap.String("env", cfg.Env),
		zap.String("config_path", flagConfig),
	)

	loc, err := cfg.Ledger.Location()
	if err != nil {
		return err
	}

	// Initialize database
	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	users := repository.NewUserRepository(db.DB)
	entries := repository.NewWorkEntryRepository(db.DB)
	resets := repository.NewResetTokenRepository(db.DB)

	// Initialize services
	resolver := service.NewRateResolver(users, cfg.Resolver.Timeout, cfg.Resolver.MaxAttempts, cfg.Resolver.RetryDelay, log.Logger)
	ledger := service.NewLedgerService(entries, resolver, cfg.Ledger.DefaultLimit, cfg.Ledger.MaxLimit)
	dashboard := service.NewDashboardService(ledger, loc)

	throttle := service.NewLoginThrottle(cfg.Auth.MaxAttempts, cfg.Auth.LockoutTTL, log.Logger)
	defer throttle.Stop()

	outbox := mailer.NewOutbox(db.DB, log.Logger)
	dispatcher := mailer.NewDispatcher(outbox, mailer.NewLogSender(log.Logger), cfg.Mail.DispatchInterval, log.Logger)
	dispatcher.Start()
	defer dispatcher.Stop()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.RememberTTL, cfg.Auth.ResetTTL)
	authService := service.NewAuthService(users, resets, tokens, outbox, throttle, service.AuthOptions{
		BcryptCost:  cfg.Auth.BcryptCost,
		DefaultRate: decimal.NewFromFloat(cfg.Ledger.DefaultRate).Round(2),
		AppURL:      cfg.Auth.AppURL,
	}, log.Logger)

	// Initialize HTTP server
	secureCookies := cfg.Env == "production"
	h := router.New(router.Handlers{
		Health:  handler.NewHealthHandler(db, log.Logger),
		Auth:    handler.NewAuthHandler(authService, secureCookies, log.Logger),
		Users:   handler.NewUserHandler(service.NewUserService(users), log.Logger),
		Entries: handler.NewEntryHandler(ledger, log.Logger),
		Payroll: handler.NewPayrollHandler(dashboard, log.Logger),
	}, authService, cfg.HTTP.AllowedOrigin, log.Logger)

	srv := server.New(cfg.HTTP, h, log.Logger)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down worklog...")
	if err := srv.Shutdown(cfg.HTTP.ShutdownTimeout); err != nil {
		log.Warn("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("worklog stopped")
	return nil
}

package router

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/handler"
)

// Handlers groups the endpoint handlers mounted by New.
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	Users   *handler.UserHandler
	Entries *handler.EntryHandler
	Payroll *handler.PayrollHandler
}

func New(h Handlers, authenticator Authenticator, allowedOrigin string, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	protected := requireAuth(authenticator, logger)

	// Health check endpoint
	mux.HandleFunc("GET /health", h.Health.Health)

	// Account endpoints
	mux.HandleFunc("POST /api/v1/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", h.Auth.Logout)
	mux.HandleFunc("POST /api/v1/auth/forgot-password", h.Auth.ForgotPassword)
	mux.HandleFunc("GET /api/v1/auth/reset-password", h.Auth.VerifyResetToken)
	mux.HandleFunc("POST /api/v1/auth/reset-password", h.Auth.ResetPassword)
	mux.Handle("GET /api/v1/auth/me", protected(h.Auth.Me))

	mux.Handle("PUT /api/v1/user/profile", protected(h.Users.UpdateProfile))
	mux.Handle("PUT /api/v1/user/rate", protected(h.Users.UpdateRate))

	// Work entry endpoints
	mux.Handle("POST /api/v1/entries", protected(h.Entries.Create))
	mux.Handle("GET /api/v1/entries", protected(h.Entries.List))
	mux.Handle("GET /api/v1/entries/{id}", protected(h.Entries.Get))
	mux.Handle("PUT /api/v1/entries/{id}", protected(h.Entries.Update))
	mux.Handle("DELETE /api/v1/entries/{id}", protected(h.Entries.Delete))

	// Payroll endpoints
	mux.Handle("GET /api/v1/payroll/periods", protected(h.Payroll.Periods))
	mux.Handle("GET /api/v1/dashboard", protected(h.Payroll.Dashboard))

	return logRequests(cors(allowedOrigin, mux), logger)
}

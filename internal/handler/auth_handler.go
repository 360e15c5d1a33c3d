package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/auth"
	"github.com/LipeSan/worklog-web-app/internal/models"
	"github.com/LipeSan/worklog-web-app/internal/service"
)

// ResetTokenStatus answers a reset link check.
type ResetTokenStatus struct {
	Valid bool   `json:"valid"`
	Email string `json:"email"`
}

type AuthHandler struct {
	auth          *service.AuthService
	secureCookies bool
	logger        *zap.Logger
}

// NewAuthHandler creates the account handler. secureCookies marks the session cookie
// Secure and should be set whenever the API is served over TLS.
func NewAuthHandler(auth *service.AuthService, secureCookies bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(resp.Token, resp.ExpiresAt))
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie := h.sessionCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	user, err := h.auth.Me(r.Context(), owner)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "if the e-mail is registered, a reset link has been sent",
	})
}

func (h *AuthHandler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	email, err := h.auth.VerifyResetToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ResetTokenStatus{Valid: true, Email: email})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "password updated"})
}

func (h *AuthHandler) sessionCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

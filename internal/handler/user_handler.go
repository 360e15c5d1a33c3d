package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/models"
	"github.com/LipeSan/worklog-web-app/internal/service"
)

type UserHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

func NewUserHandler(users *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	var req models.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), owner, req)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateRate(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	var req models.UpdateRateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	user, err := h.users.UpdateRate(r.Context(), owner, req)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("Hourly rate updated", zap.Int64("user_id", owner), zap.String("rate", user.Rate.String()))
	writeJSON(w, http.StatusOK, user)
}

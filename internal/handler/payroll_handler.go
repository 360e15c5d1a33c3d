package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/service"
)

type PayrollHandler struct {
	dashboard *service.DashboardService
	logger    *zap.Logger
}

func NewPayrollHandler(dashboard *service.DashboardService, logger *zap.Logger) *PayrollHandler {
	return &PayrollHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

func (h *PayrollHandler) Periods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboard.Periods())
}

func (h *PayrollHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	overview, err := h.dashboard.Overview(r.Context(), owner, r.URL.Query().Get("period"))
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

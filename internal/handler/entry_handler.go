package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
	"github.com/LipeSan/worklog-web-app/internal/models"
	"github.com/LipeSan/worklog-web-app/internal/service"
	"github.com/LipeSan/worklog-web-app/internal/timecalc"
	"github.com/LipeSan/worklog-web-app/internal/validate"
)

// DeleteResponse confirms a deleted work entry.
type DeleteResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type EntryHandler struct {
	ledger *service.LedgerService
	logger *zap.Logger
}

func NewEntryHandler(ledger *service.LedgerService, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{
		ledger: ledger,
		logger: logger,
	}
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	payload, err := h.decodePayload(w, r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	entry, err := h.ledger.Create(r.Context(), owner, payload)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("Work entry created", zap.Int64("owner_id", owner), zap.Int64("entry_id", entry.ID))
	writeJSON(w, http.StatusCreated, entry)
}

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	result, err := h.ledger.List(r.Context(), owner, filter)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	entry, err := h.ledger.Get(r.Context(), owner, id)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	payload, err := h.decodePayload(w, r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	entry, err := h.ledger.Update(r.Context(), owner, id, payload)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("Work entry updated", zap.Int64("owner_id", owner), zap.Int64("entry_id", id))
	writeJSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	deleted, err := h.ledger.Delete(r.Context(), owner, id)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("Work entry deleted", zap.Int64("owner_id", owner), zap.Int64("entry_id", deleted))
	writeJSON(w, http.StatusOK, DeleteResponse{ID: deleted, Message: "work entry deleted"})
}

func (h *EntryHandler) decodePayload(w http.ResponseWriter, r *http.Request) (models.EntryPayload, error) {
	body, err := readBody(w, r)
	if err != nil {
		return models.EntryPayload{}, err
	}
	return validate.DecodeEntry(body)
}

// parseListFilter reads startDate, endDate, project, limit and offset. Every
// malformed parameter is reported.
func parseListFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	var (
		filter  models.ListFilter
		details []string
	)

	parseDate := func(name string) *time.Time {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return nil
		}
		d, err := timecalc.ParseDate(raw)
		if err != nil {
			details = append(details, name+" must be a YYYY-MM-DD date")
			return nil
		}
		return &d
	}
	parseInt := func(name string) int {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, name+" must be an integer")
			return 0
		}
		return n
	}

	filter.StartDate = parseDate("startDate")
	filter.EndDate = parseDate("endDate")
	filter.Project = strings.TrimSpace(q.Get("project"))
	filter.Limit = parseInt("limit")
	filter.Offset = parseInt("offset")

	if len(details) > 0 {
		return filter, apperrors.NewValidationError("invalid query", details...)
	}
	return filter, nil
}

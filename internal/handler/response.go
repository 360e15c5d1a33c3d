package handler

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
	"github.com/LipeSan/worklog-web-app/internal/auth"
)

const maxBodyBytes = 1 << 16

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// MessageResponse acknowledges an operation that has nothing else to return.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto a status code and writes it as an ErrorResponse.
// Unclassified errors are logged and reported as a bare 500.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		validationErr *apperrors.ValidationError
		resolverErr   *apperrors.ResolverError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationErr.Message, Details: validationErr.Details})
	case apperrors.IsUnauthorized(err):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case apperrors.IsForbidden(err):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case apperrors.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case apperrors.IsConflict(err):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.As(err, &resolverErr):
		logger.Warn("Rate resolver unavailable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: resolverErr.Message})
	default:
		if tooMany, ok := apperrors.AsTooManyRequests(err); ok {
			secs := int(math.Ceil(tooMany.RetryAfter.Seconds()))
			if secs > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: tooMany.Message})
			return
		}
		logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return apperrors.NewValidationError("invalid request body", err.Error())
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.NewValidationError("invalid request body", err.Error())
	}
	return body, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid data", "invalid id parameter")
	}
	return id, nil
}

func ownerID(r *http.Request) (int64, error) {
	id, ok := auth.OwnerID(r.Context())
	if !ok {
		return 0, apperrors.NewUnauthorizedError("authentication required")
	}
	return id, nil
}

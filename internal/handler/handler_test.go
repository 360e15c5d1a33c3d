package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
	"github.com/LipeSan/worklog-web-app/internal/auth"
	"github.com/LipeSan/worklog-web-app/internal/database"
	"github.com/LipeSan/worklog-web-app/internal/mailer"
	"github.com/LipeSan/worklog-web-app/internal/models"
	"github.com/LipeSan/worklog-web-app/internal/repository"
	"github.com/LipeSan/worklog-web-app/internal/service"
)

type testEnv struct {
	db      *database.DB
	users   *repository.UserRepository
	entries *EntryHandler
	auth    *AuthHandler
	health  *HealthHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(filepath.Join(t.TempDir(), "worklog.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := repository.NewUserRepository(db.DB)
	resolver := service.NewRateResolver(users, time.Second, 2, time.Millisecond, logger)
	ledger := service.NewLedgerService(repository.NewWorkEntryRepository(db.DB), resolver, 50, 500)

	throttle := service.NewLoginThrottle(5, time.Minute, logger)
	t.Cleanup(throttle.Stop)
	authSvc := service.NewAuthService(
		users,
		repository.NewResetTokenRepository(db.DB),
		auth.NewTokenManager("handler-secret", time.Hour, 24*time.Hour, time.Hour),
		mailer.NewOutbox(db.DB, logger),
		throttle,
		service.AuthOptions{BcryptCost: bcrypt.MinCost, DefaultRate: decimal.NewFromInt(25), AppURL: "http://localhost"},
		logger,
	)

	return &testEnv{
		db:      db,
		users:   users,
		entries: NewEntryHandler(ledger, logger),
		auth:    NewAuthHandler(authSvc, false, logger),
		health:  NewHealthHandler(db, logger),
	}
}

func (e *testEnv) owner(t *testing.T, email string) int64 {
	t.Helper()
	u, err := e.users.Create(context.Background(), &models.User{
		FullName:     "Test User",
		Email:        email,
		Phone:        "+61412345678",
		PasswordHash: "hash",
		Rate:         decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	return u.ID
}

func request(method, target, body string, owner int64) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if owner > 0 {
		req = req.WithContext(auth.WithOwner(req.Context(), owner))
	}
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

const validEntry = `{"date":"2026-03-02","project":"Website","startTime":"09:00","endTime":"13:00","hours":1}`

func TestEntryCreate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.owner(t, "a@example.com")

	rec := httptest.NewRecorder()
	env.entries.Create(rec, request(http.MethodPost, "/api/v1/entries", validEntry, owner))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(4), body["hours"])
	assert.Equal(t, float64(25), body["hourlyRate"])
	assert.Equal(t, float64(100), body["totalAmount"])
	assert.Equal(t, "2026-03-02", body["date"])
}

func TestEntryCreateRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	owner := env.owner(t, "a@example.com")

	tests := []struct {
		name    string
		body    string
		details int
	}{
		{"wrong field types", `{"date":20260302,"project":"Website","startTime":"09:00","endTime":"10:00","hours":"4"}`, 2},
		{"rule violations", `{"date":"2026-03-02","project":"","startTime":"10:00","endTime":"09:00"}`, 2},
		{"types and rules together", `{"project":"","startTime":10,"endTime":"09:00"}`, 3},
		{"not json", `date=2026-03-02`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.entries.Create(rec, request(http.MethodPost, "/api/v1/entries", tt.body, owner))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Len(t, decodeError(t, rec).Details, tt.details)
		})
	}
}

func TestEntryCreateRequiresOwner(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.entries.Create(rec, request(http.MethodPost, "/api/v1/entries", validEntry, 0))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEntryGetUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	a := env.owner(t, "a@example.com")
	b := env.owner(t, "b@example.com")

	rec := httptest.NewRecorder()
	env.entries.Create(rec, request(http.MethodPost, "/api/v1/entries", validEntry, a))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.WorkEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	withID := func(req *http.Request, id string) *http.Request {
		req.SetPathValue("id", id)
		return req
	}

	rec = httptest.NewRecorder()
	env.entries.Get(rec, withID(request(http.MethodGet, "/api/v1/entries/1", "", b), "1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	env.entries.Get(rec, withID(request(http.MethodGet, "/api/v1/entries/999", "", a), "999"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	env.entries.Get(rec, withID(request(http.MethodGet, "/api/v1/entries/abc", "", a), "abc"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	update := `{"date":"2026-03-02","project":"Website","startTime":"09:00","endTime":"11:30","version":1}`
	rec = httptest.NewRecorder()
	env.entries.Update(rec, withID(request(http.MethodPut, "/api/v1/entries/1", update, a), "1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.WorkEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "2.5", updated.Hours.String())
	assert.Equal(t, "62.5", updated.TotalAmount.String())

	rec = httptest.NewRecorder()
	env.entries.Update(rec, withID(request(http.MethodPut, "/api/v1/entries/1", update, a), "1"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	env.entries.Delete(rec, withID(request(http.MethodDelete, "/api/v1/entries/1", "", b), "1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	env.entries.Delete(rec, withID(request(http.MethodDelete, "/api/v1/entries/1", "", a), "1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var deleted DeleteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.Equal(t, created.ID, deleted.ID)
}

func TestEntryList(t *testing.T) {
	env := newTestEnv(t)
	owner := env.owner(t, "a@example.com")

	for _, date := range []string{"2026-03-01", "2026-03-02", "2026-03-03"} {
		rec := httptest.NewRecorder()
		body := strings.Replace(validEntry, "2026-03-02", date, 1)
		env.entries.Create(rec, request(http.MethodPost, "/api/v1/entries", body, owner))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := httptest.NewRecorder()
	env.entries.List(rec, request(http.MethodGet, "/api/v1/entries?startDate=2026-03-02&limit=1", "", owner))
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "2026-03-03", result.Entries[0].Date)
	assert.Equal(t, "8", result.Summary.TotalHours.String())
	assert.Equal(t, "200", result.Summary.TotalAmount.String())
	assert.Equal(t, models.Pagination{Total: 2, Page: 1, Limit: 1, TotalPages: 2}, result.Pagination)

	rec = httptest.NewRecorder()
	env.entries.List(rec, request(http.MethodGet, "/api/v1/entries?startDate=03/02/2026&limit=ten", "", owner))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decodeError(t, rec).Details, 2)
}

func TestLoginSetsCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.auth.Register(rec, request(http.MethodPost, "/api/v1/auth/register",
		`{"fullName":"Jane Doe","phone":"0412345678","email":"jane@example.com","password":"secret123"}`, 0))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	env.auth.Login(rec, request(http.MethodPost, "/api/v1/auth/login", `{"email":"jane@example.com","password":"secret123"}`, 0))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, cookies[0].Value)

	rec = httptest.NewRecorder()
	env.auth.Login(rec, request(http.MethodPost, "/api/v1/auth/login", `{"email":"jane@example.com","password":"nope12345"}`, 0))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	env.auth.Logout(rec, request(http.MethodPost, "/api/v1/auth/logout", "", 0))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestForgotPasswordAlwaysSucceeds(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.auth.ForgotPassword(rec, request(http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"ghost@example.com"}`, 0))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	env.auth.VerifyResetToken(rec, request(http.MethodGet, "/api/v1/auth/reset-password?token=bogus", "", 0))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.health.Health(rec, request(http.MethodGet, "/health", "", 0))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	require.NoError(t, env.db.Close())
	rec = httptest.NewRecorder()
	env.health.Health(rec, request(http.MethodGet, "/health", "", 0))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperrors.NewValidationError("invalid data", "a", "b"), http.StatusBadRequest},
		{apperrors.NewUnauthorizedError("invalid token"), http.StatusUnauthorized},
		{apperrors.NewForbiddenError("not yours"), http.StatusForbidden},
		{apperrors.NewNotFoundError("work entry", 1), http.StatusNotFound},
		{apperrors.NewConflictError("stale"), http.StatusConflict},
		{apperrors.NewResolverError("failed to resolve hourly rate", errors.New("locked")), http.StatusServiceUnavailable},
		{apperrors.NewTooManyRequestsError("slow down", 1500 * time.Millisecond), http.StatusTooManyRequests},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		WriteError(rec, zap.NewNop(), tt.err)
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
	}

	rec := httptest.NewRecorder()
	WriteError(rec, zap.NewNop(), apperrors.NewTooManyRequestsError("slow down", 1500*time.Millisecond))
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	rec = httptest.NewRecorder()
	WriteError(rec, zap.NewNop(), errors.New("disk on fire"))
	assert.Equal(t, "internal server error", decodeError(t, rec).Error)
}

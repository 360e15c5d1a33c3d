package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/models"
	"github.com/LipeSan/worklog-web-app/internal/payroll"
)

// APIClient talks to a running worklog server on behalf of one user.
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// PeriodList is the payroll calendar returned by the server.
type PeriodList struct {
	Periods         []payroll.Period `json:"periods"`
	CurrentPeriodID string           `json:"currentPeriodId"`
}

// ListQuery selects a page of entries. Zero values are left to the server defaults.
type ListQuery struct {
	StartDate string
	EndDate   string
	Project   string
	Limit     int
	Offset    int
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.StartDate != "" {
		v.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("endDate", q.EndDate)
	}
	if q.Project != "" {
		v.Set("project", q.Project)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SetToken sets the session token sent as a Bearer credential.
func (c *APIClient) SetToken(token string) {
	c.token = token
}

// Token returns the current session token.
func (c *APIClient) Token() string {
	return c.token
}

// Login signs in and keeps the returned session token for later calls.
func (c *APIClient) Login(ctx context.Context, email, password string, remember bool) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	req := models.LoginRequest{Email: email, Password: password, Remember: remember}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", req, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

func (c *APIClient) CreateEntry(ctx context.Context, payload models.EntryPayload) (*models.WorkEntry, error) {
	var entry models.WorkEntry
	if err := c.do(ctx, http.MethodPost, "/api/v1/entries", payload, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *APIClient) ListEntries(ctx context.Context, q ListQuery) (*models.ListResult, error) {
	path := "/api/v1/entries"
	if v := q.values(); len(v) > 0 {
		path += "?" + v.Encode()
	}

	var result models.ListResult
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) Periods(ctx context.Context) (*PeriodList, error) {
	var list PeriodList
	if err := c.do(ctx, http.MethodGet, "/api/v1/payroll/periods", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// HealthCheck checks if the server is reachable
func (c *APIClient) HealthCheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		c.logger.Error("Request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, data)
		c.logger.Debug("Server returned error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("error", apiErr.Message),
		)
		return apiErr
	}

	c.logger.Debug("Request succeeded",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LipeSan/worklog-web-app/internal/models"
	"github.com/LipeSan/worklog-web-app/internal/payroll"
	"github.com/LipeSan/worklog-web-app/internal/timecalc"
)

func TestParseDay(t *testing.T) {
	now := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)

	d, err := parseDay("", now)
	require.NoError(t, err)
	assert.Equal(t, now, d)

	d, err = parseDay("2026-01-05", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05", timecalc.FormatDate(d))

	d, err = parseDay("yesterday", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", timecalc.FormatDate(d))

	_, err = parseDay("zzzz qqqq", now)
	assert.Error(t, err)
}

func TestRenderPeriodsHighlightsCurrent(t *testing.T) {
	day := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	periods := payroll.Generate(day)

	var buf bytes.Buffer
	renderPeriods(&buf, periods, payroll.FindCurrent(periods, day), day)

	out := buf.String()
	assert.Contains(t, out, "Payroll periods around 2026-10-17")
	assert.Contains(t, out, "▶ period-31")
	assert.Contains(t, out, "2026-10-12 → 2026-10-25")
}

func TestRenderEntries(t *testing.T) {
	var buf bytes.Buffer
	renderEntries(&buf, &models.ListResult{})
	assert.Contains(t, buf.String(), "No work sessions found")

	buf.Reset()
	renderEntries(&buf, &models.ListResult{
		Entries: []*models.WorkEntry{{
			Date:        "2026-10-12",
			Project:     "A very long project name that overflows",
			StartTime:   "09:00",
			EndTime:     "17:30",
			Hours:       decimal.RequireFromString("8.5"),
			TotalAmount: decimal.RequireFromString("1275"),
		}},
		Summary:    models.Summary{TotalHours: decimal.RequireFromString("8.5"), TotalAmount: decimal.RequireFromString("1275")},
		Pagination: models.Pagination{Total: 1, Page: 1, Limit: 50, TotalPages: 1},
	})

	out := buf.String()
	assert.Contains(t, out, "09:00-17:30")
	assert.Contains(t, out, "8.50")
	assert.Contains(t, out, "$1,275")
	assert.Contains(t, out, "A very long project nam…")
	assert.Contains(t, out, "page 1 of 1, 1 sessions")
}

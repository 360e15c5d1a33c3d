package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money and hours go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// WorkEntry is one logged work session. Hours, HourlyRate and TotalAmount are derived
// at write time and never taken from the client.
type WorkEntry struct {
	ID          int64           `json:"id"`
	OwnerID     int64           `json:"ownerId"`
	Date        string          `json:"date"`
	Project     string          `json:"project"`
	StartTime   string          `json:"startTime"`
	EndTime     string          `json:"endTime"`
	Hours       decimal.Decimal `json:"hours"`
	HourlyRate  decimal.Decimal `json:"hourlyRate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Description *string         `json:"description,omitempty"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// EntryPayload is a create/update request body after its field types have been
// checked but before any business rule has. Hours is advisory only.
type EntryPayload struct {
	Date        string   `json:"date"`
	Project     string   `json:"project"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Hours       *float64 `json:"hours,omitempty"`
	Description *string  `json:"description,omitempty"`
	Version     *int64   `json:"version,omitempty"`
}

// EntryDraft is a fully validated entry ready to be priced and written.
// Only the validate package constructs one.
type EntryDraft struct {
	Date        time.Time
	Project     string
	StartTime   string
	EndTime     string
	Hours       decimal.Decimal
	Description *string
	Version     *int64
}

// EntryRecord is what the repository persists: a draft plus its rate snapshot.
type EntryRecord struct {
	OwnerID    int64
	Draft      EntryDraft
	HourlyRate decimal.Decimal
}

// ListFilter narrows a ledger listing. Nil dates are unbounded.
type ListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Project   string
	Limit     int
	Offset    int
}

// Summary aggregates an entire filtered set, independent of pagination.
type Summary struct {
	TotalHours  decimal.Decimal `json:"totalHours"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Pagination describes the page returned by a listing.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// ListResult is a page of entries plus full-set aggregates.
type ListResult struct {
	Entries    []*WorkEntry `json:"entries"`
	Summary    Summary      `json:"summary"`
	Pagination Pagination   `json:"pagination"`
}

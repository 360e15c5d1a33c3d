package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
	"github.com/LipeSan/worklog-web-app/internal/models"
	"github.com/LipeSan/worklog-web-app/internal/repository"
	"github.com/LipeSan/worklog-web-app/internal/validate"
)

// RateSource resolves the hourly rate snapshot for an owner.
type RateSource interface {
	Resolve(ctx context.Context, ownerID int64) (decimal.Decimal, error)
}

// LedgerService owns the lifecycle of work entries. Every operation is scoped to
// one owner; entries of other owners are never read or written on their behalf.
type LedgerService struct {
	entries      *repository.WorkEntryRepository
	rates        RateSource
	defaultLimit int
	maxLimit     int
}

func NewLedgerService(entries *repository.WorkEntryRepository, rates RateSource, defaultLimit, maxLimit int) *LedgerService {
	return &LedgerService{
		entries:      entries,
		rates:        rates,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Create validates the payload, snapshots the owner's rate and stores the entry.
func (s *LedgerService) Create(ctx context.Context, ownerID int64, payload models.EntryPayload) (*models.WorkEntry, error) {
	draft, err := validate.Entry(payload)
	if err != nil {
		return nil, err
	}

	rate, err := s.rates.Resolve(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return s.entries.Create(ctx, models.EntryRecord{
		OwnerID:    ownerID,
		Draft:      draft,
		HourlyRate: rate,
	})
}

// Get returns one of the owner's entries.
func (s *LedgerService) Get(ctx context.Context, ownerID, entryID int64) (*models.WorkEntry, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.OwnerID != ownerID {
		return nil, apperrors.NewForbiddenError("work entry belongs to another user")
	}
	return entry, nil
}

// Update re-validates the payload and re-derives hours, rate and total exactly as
// Create does, then overwrites the entry.
func (s *LedgerService) Update(ctx context.Context, ownerID, entryID int64, payload models.EntryPayload) (*models.WorkEntry, error) {
	if _, err := s.Get(ctx, ownerID, entryID); err != nil {
		return nil, err
	}

	draft, err := validate.Entry(payload)
	if err != nil {
		return nil, err
	}

	rate, err := s.rates.Resolve(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return s.entries.Update(ctx, entryID, models.EntryRecord{
		OwnerID:    ownerID,
		Draft:      draft,
		HourlyRate: rate,
	})
}

// Delete removes one of the owner's entries and returns its id.
func (s *LedgerService) Delete(ctx context.Context, ownerID, entryID int64) (int64, error) {
	if _, err := s.Get(ctx, ownerID, entryID); err != nil {
		return 0, err
	}
	if err := s.entries.Delete(ctx, entryID, ownerID); err != nil {
		return 0, err
	}
	return entryID, nil
}

// List returns a page of the owner's entries with a summary over the whole
// filtered set. An owner without entries gets an empty page, not an error.
func (s *LedgerService) List(ctx context.Context, ownerID int64, filter models.ListFilter) (*models.ListResult, error) {
	filter = s.normalize(filter)

	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, apperrors.NewValidationError("invalid data", "endDate must not be before startDate")
	}

	entries, err := s.entries.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	total, summary, err := s.entries.Summarize(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	return &models.ListResult{
		Entries: entries,
		Summary: summary,
		Pagination: models.Pagination{
			Total:      total,
			Page:       filter.Offset/filter.Limit + 1,
			Limit:      filter.Limit,
			TotalPages: (total + filter.Limit - 1) / filter.Limit,
		},
	}, nil
}

// Summarize totals the owner's entries matching filter, ignoring pagination.
func (s *LedgerService) Summarize(ctx context.Context, ownerID int64, filter models.ListFilter) (models.Summary, error) {
	_, summary, err := s.entries.Summarize(ctx, ownerID, filter)
	return summary, err
}

func (s *LedgerService) normalize(filter models.ListFilter) models.ListFilter {
	if filter.Limit <= 0 {
		filter.Limit = s.defaultLimit
	}
	if filter.Limit > s.maxLimit {
		filter.Limit = s.maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return filter
}

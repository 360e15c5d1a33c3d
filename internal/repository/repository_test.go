package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
	"github.com/LipeSan/worklog-web-app/internal/database"
	"github.com/LipeSan/worklog-web-app/internal/models"
)

func setupDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "worklog.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, users *UserRepository, email string, rate float64) *models.User {
	t.Helper()
	u, err := users.Create(context.Background(), &models.User{
		FullName:     "Test User",
		Email:        email,
		Phone:        "+61412345678",
		PasswordHash: "hash",
		Rate:         decimal.NewFromFloat(rate),
	})
	require.NoError(t, err)
	return u
}

func record(ownerID int64, date, project, start, end string, hours, rate float64) models.EntryRecord {
	d, _ := time.Parse("2006-01-02", date)
	return models.EntryRecord{
		OwnerID: ownerID,
		Draft: models.EntryDraft{
			Date:      d,
			Project:   project,
			StartTime: start,
			EndTime:   end,
			Hours:     decimal.NewFromFloat(hours),
		},
		HourlyRate: decimal.NewFromFloat(rate),
	}
}

func TestWorkEntryCreateAndGet(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db.DB)
	entries := NewWorkEntryRepository(db.DB)
	owner := createUser(t, users, "a@example.com", 25)

	rec := record(owner.ID, "2026-03-02", "Website", "09:00", "13:00", 4, 25)
	desc := "landing page"
	rec.Draft.Description = &desc

	created, err := entries.Create(ctx, rec)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(1), created.Version)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(100)))

	got, err := entries.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, "2026-03-02", got.Date)
	assert.Equal(t, "09:00", got.StartTime)
	assert.Equal(t, "13:00", got.EndTime)
	assert.True(t, got.Hours.Equal(decimal.NewFromInt(4)))
	assert.True(t, got.HourlyRate.Equal(decimal.NewFromInt(25)))
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)

	_, err = entries.GetByID(ctx, created.ID+100)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTotalAmountRounding(t *testing.T) {
	assert.Equal(t, "41.63", TotalAmount(decimal.RequireFromString("1.67"), decimal.RequireFromString("24.93")).String())
	assert.Equal(t, "212.5", TotalAmount(decimal.RequireFromString("8.5"), decimal.NewFromInt(25)).String())
}

func TestWorkEntryUpdate(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db.DB)
	entries := NewWorkEntryRepository(db.DB)
	owner := createUser(t, users, "a@example.com", 25)
	other := createUser(t, users, "b@example.com", 30)

	created, err := entries.Create(ctx, record(owner.ID, "2026-03-02", "Website", "09:00", "13:00", 4, 25))
	require.NoError(t, err)

	t.Run("overwrites_and_bumps_version", func(t *testing.T) {
		updated, err := entries.Update(ctx, created.ID, record(owner.ID, "2026-03-03", "Mobile", "10:00", "12:30", 2.5, 40))
		require.NoError(t, err)
		assert.Equal(t, "2026-03-03", updated.Date)
		assert.Equal(t, "Mobile", updated.Project)
		assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, int64(2), updated.Version)
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	})

	t.Run("stale_version_conflicts", func(t *testing.T) {
		rec := record(owner.ID, "2026-03-03", "Mobile", "10:00", "11:00", 1, 40)
		stale := int64(1)
		rec.Draft.Version = &stale
		_, err := entries.Update(ctx, created.ID, rec)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("current_version_succeeds", func(t *testing.T) {
		rec := record(owner.ID, "2026-03-03", "Mobile", "10:00", "11:00", 1, 40)
		current := int64(2)
		rec.Draft.Version = &current
		updated, err := entries.Update(ctx, created.ID, rec)
		require.NoError(t, err)
		assert.Equal(t, int64(3), updated.Version)
	})

	t.Run("other_owner_cannot_write", func(t *testing.T) {
		_, err := entries.Update(ctx, created.ID, record(other.ID, "2026-03-03", "Hijack", "10:00", "11:00", 1, 40))
		assert.True(t, apperrors.IsNotFound(err))

		got, err := entries.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mobile", got.Project)
	})
}

func TestWorkEntryDelete(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db.DB)
	entries := NewWorkEntryRepository(db.DB)
	owner := createUser(t, users, "a@example.com", 25)
	other := createUser(t, users, "b@example.com", 30)

	created, err := entries.Create(ctx, record(owner.ID, "2026-03-02", "Website", "09:00", "13:00", 4, 25))
	require.NoError(t, err)

	assert.True(t, apperrors.IsNotFound(entries.Delete(ctx, created.ID, other.ID)))
	require.NoError(t, entries.Delete(ctx, created.ID, owner.ID))
	assert.True(t, apperrors.IsNotFound(entries.Delete(ctx, created.ID, owner.ID)))
}

func TestWorkEntryListAndSummarize(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db.DB)
	entries := NewWorkEntryRepository(db.DB)
	owner := createUser(t, users, "a@example.com", 25)
	other := createUser(t, users, "b@example.com", 30)

	for i := 1; i <= 10; i++ {
		date := fmt.Sprintf("2026-03-%02d", i)
		_, err := entries.Create(ctx, record(owner.ID, date, "Website", "09:00", "10:30", 1.5, 25))
		require.NoError(t, err)
	}
	_, err := entries.Create(ctx, record(owner.ID, "2026-03-05", "Discount 50%_off", "13:00", "14:00", 1, 25))
	require.NoError(t, err)
	_, err = entries.Create(ctx, record(other.ID, "2026-03-05", "Website", "09:00", "17:00", 8, 30))
	require.NoError(t, err)

	t.Run("ordered_most_recent_first", func(t *testing.T) {
		list, err := entries.List(ctx, owner.ID, models.ListFilter{Limit: 50})
		require.NoError(t, err)
		require.Len(t, list, 11)
		assert.Equal(t, "2026-03-10", list[0].Date)
		assert.Equal(t, "2026-03-01", list[len(list)-1].Date)

		// Same date: most recently created first.
		var sameDay []*models.WorkEntry
		for _, e := range list {
			if e.Date == "2026-03-05" {
				sameDay = append(sameDay, e)
			}
		}
		require.Len(t, sameDay, 2)
		assert.Equal(t, "Discount 50%_off", sameDay[0].Project)
	})

	t.Run("summary_ignores_pagination", func(t *testing.T) {
		filter := models.ListFilter{Project: "website", Limit: 5}
		page, err := entries.List(ctx, owner.ID, filter)
		require.NoError(t, err)
		assert.Len(t, page, 5)

		count, summary, err := entries.Summarize(ctx, owner.ID, filter)
		require.NoError(t, err)
		assert.Equal(t, 10, count)
		assert.Equal(t, "15", summary.TotalHours.String())
		assert.Equal(t, "375", summary.TotalAmount.String())
	})

	t.Run("date_range_is_inclusive", func(t *testing.T) {
		start, _ := time.Parse("2006-01-02", "2026-03-03")
		end, _ := time.Parse("2006-01-02", "2026-03-05")
		filter := models.ListFilter{StartDate: &start, EndDate: &end, Limit: 50}

		list, err := entries.List(ctx, owner.ID, filter)
		require.NoError(t, err)
		assert.Len(t, list, 4)
	})

	t.Run("project_wildcards_are_literal", func(t *testing.T) {
		list, err := entries.List(ctx, owner.ID, models.ListFilter{Project: "50%_", Limit: 50})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Discount 50%_off", list[0].Project)

		list, err = entries.List(ctx, owner.ID, models.ListFilter{Project: "%", Limit: 50})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("offset_pages_through", func(t *testing.T) {
		list, err := entries.List(ctx, owner.ID, models.ListFilter{Limit: 5, Offset: 10})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("unknown_owner_is_empty", func(t *testing.T) {
		list, err := entries.List(ctx, 9999, models.ListFilter{Limit: 50})
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)

		count, summary, err := entries.Summarize(ctx, 9999, models.ListFilter{})
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.True(t, summary.TotalHours.IsZero())
		assert.True(t, summary.TotalAmount.IsZero())
	})
}

func TestProjectFilterFoldsUnicodeCase(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db.DB)
	entries := NewWorkEntryRepository(db.DB)
	owner := createUser(t, users, "a@example.com", 25)

	_, err := entries.Create(ctx, record(owner.ID, "2026-03-02", "Ção Café", "09:00", "10:00", 1, 25))
	require.NoError(t, err)
	_, err = entries.Create(ctx, record(owner.ID, "2026-03-03", "Website", "09:00", "10:00", 1, 25))
	require.NoError(t, err)

	tests := []struct {
		name    string
		project string
		want    int
	}{
		{"lower_case_accents", "ção café", 1},
		{"upper_case_accents", "CAFÉ", 1},
		{"mixed_case", "çÃO", 1},
		{"ascii_still_folds", "WEB", 1},
		{"no_match", "cafe", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := models.ListFilter{Project: tt.project, Limit: 50}
			list, err := entries.List(ctx, owner.ID, filter)
			require.NoError(t, err)
			assert.Len(t, list, tt.want)

			count, _, err := entries.Summarize(ctx, owner.ID, filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestSummarizeAddsExactCents(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db.DB)
	entries := NewWorkEntryRepository(db.DB)
	owner := createUser(t, users, "a@example.com", 10)

	// Thirty float64 additions of 0.1 do not land on 3.
	for i := 0; i < 30; i++ {
		_, err := entries.Create(ctx, record(owner.ID, "2026-03-02", "Website", "09:00", "09:01", 0.01, 10))
		require.NoError(t, err)
	}

	count, summary, err := entries.Summarize(ctx, owner.ID, models.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 30, count)
	assert.Equal(t, "0.3", summary.TotalHours.String())
	assert.Equal(t, "3", summary.TotalAmount.String())
}

func TestUserRepository(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db.DB)

	u := createUser(t, users, "a@example.com", 25)
	assert.True(t, u.IsActive)
	assert.True(t, u.Rate.Equal(decimal.NewFromInt(25)))

	t.Run("duplicate_email_conflicts", func(t *testing.T) {
		_, err := users.Create(ctx, &models.User{FullName: "X", Email: "a@example.com", Phone: "+61412345678", PasswordHash: "h"})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("lookups", func(t *testing.T) {
		byEmail, err := users.FindByEmail(ctx, "a@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		_, err = users.FindByEmail(ctx, "nobody@example.com")
		assert.True(t, apperrors.IsNotFound(err))

		exists, err := users.EmailExists(ctx, "a@example.com")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("rate", func(t *testing.T) {
		updated, err := users.UpdateRate(ctx, u.ID, decimal.RequireFromString("42.5"))
		require.NoError(t, err)
		assert.Equal(t, "42.5", updated.Rate.String())

		rate, found, err := users.GetRate(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "42.5", rate.String())

		_, found, err = users.GetRate(ctx, 9999)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("inactive_has_no_rate", func(t *testing.T) {
		other := createUser(t, users, "c@example.com", 30)
		require.NoError(t, users.SetActive(ctx, other.ID, false))
		_, found, err := users.GetRate(ctx, other.ID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("profile", func(t *testing.T) {
		updated, err := users.UpdateProfile(ctx, u.ID, "New Name", "+61298765432", decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.Equal(t, "New Name", updated.FullName)
		assert.Equal(t, "+61298765432", updated.Phone)

		_, err = users.UpdateProfile(ctx, 9999, "X", "Y", decimal.Zero)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestResetTokens(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db.DB)
	tokens := NewResetTokenRepository(db.DB)
	u := createUser(t, users, "a@example.com", 25)
	now := time.Now()

	require.NoError(t, tokens.Upsert(ctx, u.ID, "first", now.Add(time.Hour)))
	require.NoError(t, tokens.Upsert(ctx, u.ID, "second", now.Add(time.Hour)))

	_, err := tokens.FindValid(ctx, "first", now)
	assert.True(t, apperrors.IsNotFound(err), "upsert must replace the previous token")

	rec, err := tokens.FindValid(ctx, "second", now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, rec.UserID)
	assert.False(t, rec.Used)

	_, err = tokens.FindValid(ctx, "second", now.Add(2*time.Hour))
	assert.True(t, apperrors.IsNotFound(err), "expired tokens are not valid")

	require.NoError(t, users.ResetPassword(ctx, u.ID, rec.ID, "new-hash"))
	_, err = tokens.FindValid(ctx, "second", now)
	assert.True(t, apperrors.IsNotFound(err), "tokens are single use")

	reloaded, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reloaded.PasswordHash)

	assert.True(t, apperrors.IsNotFound(users.ResetPassword(ctx, u.ID, rec.ID, "again")))
}

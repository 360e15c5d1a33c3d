package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
	"github.com/LipeSan/worklog-web-app/internal/database"
	"github.com/LipeSan/worklog-web-app/internal/models"
	"github.com/LipeSan/worklog-web-app/internal/timecalc"
)

const workEntryColumns = `id, owner_id, work_date, project, start_time, end_time, hours, hourly_rate,
	total_amount, description, version, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type WorkEntryRepository struct {
	db *sql.DB
}

func NewWorkEntryRepository(db *sql.DB) *WorkEntryRepository {
	return &WorkEntryRepository{db: db}
}

// TotalAmount is hours × rate rounded to cents.
func TotalAmount(hours, rate decimal.Decimal) decimal.Decimal {
	return hours.Mul(rate).Round(2)
}

func (r *WorkEntryRepository) Create(ctx context.Context, rec models.EntryRecord) (*models.WorkEntry, error) {
	d := rec.Draft
	total := TotalAmount(d.Hours, rec.HourlyRate)
	now := time.Now().UTC()
	stamp := database.FormatTime(now)

	query := `
		INSERT INTO work_entries (owner_id, work_date, project, start_time, end_time, hours,
			hourly_rate, total_amount, description, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		rec.OwnerID,
		timecalc.FormatDate(d.Date),
		d.Project,
		d.StartTime,
		d.EndTime,
		d.Hours,
		rec.HourlyRate,
		total,
		d.Description,
		stamp,
		stamp,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create work entry: %w", err)
	}

	created, _ := database.ParseTime(stamp)
	return &models.WorkEntry{
		ID:          id,
		OwnerID:     rec.OwnerID,
		Date:        timecalc.FormatDate(d.Date),
		Project:     d.Project,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		Hours:       d.Hours,
		HourlyRate:  rec.HourlyRate,
		TotalAmount: total,
		Description: d.Description,
		Version:     1,
		CreatedAt:   created,
		UpdatedAt:   created,
	}, nil
}

func (r *WorkEntryRepository) GetByID(ctx context.Context, id int64) (*models.WorkEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+workEntryColumns+` FROM work_entries WHERE id = ?`, id)

	entry, err := scanWorkEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("work entry", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work entry: %w", err)
	}
	return entry, nil
}

// Update overwrites every mutable field of an owner's entry and bumps its version.
// When the draft carries a version, the write only succeeds against that version.
func (r *WorkEntryRepository) Update(ctx context.Context, id int64, rec models.EntryRecord) (*models.WorkEntry, error) {
	d := rec.Draft
	query := `
		UPDATE work_entries
		SET work_date = ?, project = ?, start_time = ?, end_time = ?, hours = ?, hourly_rate = ?,
			total_amount = ?, description = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`
	args := []any{
		timecalc.FormatDate(d.Date),
		d.Project,
		d.StartTime,
		d.EndTime,
		d.Hours,
		rec.HourlyRate,
		TotalAmount(d.Hours, rec.HourlyRate),
		d.Description,
		database.FormatTime(time.Now()),
		id,
		rec.OwnerID,
	}
	if d.Version != nil {
		query += " AND version = ?"
		args = append(args, *d.Version)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update work entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if d.Version != nil {
			return nil, apperrors.NewConflictError("work entry was modified by another request")
		}
		return nil, apperrors.NewNotFoundError("work entry", id)
	}

	return r.GetByID(ctx, id)
}

func (r *WorkEntryRepository) Delete(ctx context.Context, id, ownerID int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM work_entries WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete work entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("work entry", id)
	}

	return nil
}

// List returns one page of an owner's entries, most recent work first.
func (r *WorkEntryRepository) List(ctx context.Context, ownerID int64, filter models.ListFilter) ([]*models.WorkEntry, error) {
	where, args := buildEntryFilter(ownerID, filter)
	query := `SELECT ` + workEntryColumns + ` FROM work_entries ` + where + `
		ORDER BY work_date DESC, created_at DESC, id DESC
		LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query work entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.WorkEntry, 0)
	for rows.Next() {
		entry, err := scanWorkEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

// Summarize counts and totals the whole filtered set, ignoring Limit and Offset.
// Each stored value is read back as a decimal and summed in Go so the totals carry
// no float drift.
func (r *WorkEntryRepository) Summarize(ctx context.Context, ownerID int64, filter models.ListFilter) (int, models.Summary, error) {
	where, args := buildEntryFilter(ownerID, filter)

	rows, err := r.db.QueryContext(ctx, `SELECT hours, total_amount FROM work_entries `+where, args...)
	if err != nil {
		return 0, models.Summary{}, fmt.Errorf("failed to summarize work entries: %w", err)
	}
	defer rows.Close()

	var (
		count   int
		summary = models.Summary{TotalHours: decimal.Zero, TotalAmount: decimal.Zero}
	)
	for rows.Next() {
		var hours, total decimal.Decimal
		if err := rows.Scan(&hours, &total); err != nil {
			return 0, models.Summary{}, fmt.Errorf("failed to scan work entry totals: %w", err)
		}
		count++
		summary.TotalHours = summary.TotalHours.Add(hours)
		summary.TotalAmount = summary.TotalAmount.Add(total)
	}

	if err = rows.Err(); err != nil {
		return 0, models.Summary{}, fmt.Errorf("error iterating rows: %w", err)
	}

	summary.TotalHours = summary.TotalHours.Round(2)
	summary.TotalAmount = summary.TotalAmount.Round(2)
	return count, summary, nil
}

func buildEntryFilter(ownerID int64, filter models.ListFilter) (string, []any) {
	conds := []string{"owner_id = ?"}
	args := []any{ownerID}

	if filter.StartDate != nil {
		conds = append(conds, "work_date >= ?")
		args = append(args, timecalc.FormatDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conds = append(conds, "work_date <= ?")
		args = append(args, timecalc.FormatDate(*filter.EndDate))
	}
	if p := strings.TrimSpace(filter.Project); p != "" {
		conds = append(conds, database.FoldFunc+`(project) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(database.Fold(p))+"%")
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkEntry(row rowScanner) (*models.WorkEntry, error) {
	var (
		entry                models.WorkEntry
		description          sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&entry.ID,
		&entry.OwnerID,
		&entry.Date,
		&entry.Project,
		&entry.StartTime,
		&entry.EndTime,
		&entry.Hours,
		&entry.HourlyRate,
		&entry.TotalAmount,
		&description,
		&entry.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		entry.Description = &description.String
	}
	if entry.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if entry.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &entry, nil
}

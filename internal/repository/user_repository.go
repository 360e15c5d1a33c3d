package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
	"github.com/LipeSan/worklog-web-app/internal/database"
	"github.com/LipeSan/worklog-web-app/internal/models"
)

const userColumns = `id, full_name, email, phone, password_hash, rate, is_active, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	stamp := database.FormatTime(time.Now())

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (full_name, email, phone, password_hash, rate, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		RETURNING id
	`,
		user.FullName,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Rate,
		stamp,
		stamp,
	).Scan(&id)
	if isConstraintViolation(err) {
		return nil, apperrors.NewConflictError("email already registered")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return r.FindByID(ctx, id)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("user", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// GetRate returns the hourly rate of an active user. found is false when the user
// is missing or inactive; that is not an error.
func (r *UserRepository) GetRate(ctx context.Context, id int64) (rate decimal.Decimal, found bool, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT rate FROM users WHERE id = ? AND is_active = 1`, id).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to get rate: %w", err)
	}
	return rate, true, nil
}

func (r *UserRepository) UpdateRate(ctx context.Context, id int64, rate decimal.Decimal) (*models.User, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET rate = ?, updated_at = ? WHERE id = ?`,
		rate, database.FormatTime(time.Now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update rate: %w", err)
	}
	if err := expectRow(result, "user", id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, fullName, phone string, rate decimal.Decimal) (*models.User, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET full_name = ?, phone = ?, rate = ?, updated_at = ? WHERE id = ?`,
		fullName, phone, rate, database.FormatTime(time.Now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if err := expectRow(result, "user", id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// SetActive enables or disables an account. Inactive users cannot log in and
// have no resolvable rate.
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, database.FormatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	return expectRow(result, "user", id)
}

// ResetPassword replaces the password hash and consumes the reset token atomically.
func (r *UserRepository) ResetPassword(ctx context.Context, userID, tokenID int64, passwordHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := database.FormatTime(time.Now())
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, now, userID,
	); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = 1 WHERE id = ? AND user_id = ? AND used = 0`,
		tokenID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}
	if err := expectRow(result, "reset token", tokenID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user                 models.User
		createdAt, updatedAt string
	)
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Rate,
		&user.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if user.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func expectRow(result sql.Result, resource string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(resource, id)
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

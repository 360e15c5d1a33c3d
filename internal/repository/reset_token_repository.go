package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
	"github.com/LipeSan/worklog-web-app/internal/database"
	"github.com/LipeSan/worklog-web-app/internal/models"
)

// ResetTokenRepository stores at most one outstanding password reset token per user.
type ResetTokenRepository struct {
	db *sql.DB
}

func NewResetTokenRepository(db *sql.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Upsert replaces any previous token of the user with a fresh, unused one.
func (r *ResetTokenRepository) Upsert(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO password_reset_tokens (user_id, token, expires_at, used, created_at)
		VALUES (?, ?, ?, 0, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			token = excluded.token,
			expires_at = excluded.expires_at,
			used = 0,
			created_at = excluded.created_at
	`, userID, token, database.FormatTime(expiresAt), database.FormatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

// FindValid returns the unused, unexpired record for token.
func (r *ResetTokenRepository) FindValid(ctx context.Context, token string, now time.Time) (*models.PasswordResetToken, error) {
	var (
		t                    models.PasswordResetToken
		expiresAt, createdAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, expires_at, used, created_at
		FROM password_reset_tokens
		WHERE token = ? AND used = 0 AND expires_at > ?
	`, token, database.FormatTime(now)).Scan(&t.ID, &t.UserID, &t.Token, &expiresAt, &t.Used, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("reset token", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	if t.ExpiresAt, err = database.ParseTime(expiresAt); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

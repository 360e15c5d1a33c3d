package mailer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/database"
	"github.com/LipeSan/worklog-web-app/internal/models"
)

// Outbox is a durable queue of outgoing e-mail backed by the mail_outbox table.
type Outbox struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOutbox creates a new outbox
func NewOutbox(db *sql.DB, logger *zap.Logger) *Outbox {
	return &Outbox{
		db:     db,
		logger: logger,
	}
}

// Enqueue adds messages to the outbox in a single transaction.
func (o *Outbox) Enqueue(ctx context.Context, messages ...models.MailMessage) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO mail_outbox (recipient, subject, body, attempts, created_at)
		VALUES (?, ?, ?, 0, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := database.FormatTime(time.Now())
	for _, msg := range messages {
		if _, err := stmt.ExecContext(ctx, msg.Recipient, msg.Subject, msg.Body, now); err != nil {
			return fmt.Errorf("failed to enqueue message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	o.logger.Debug("Mail enqueued", zap.Int("count", len(messages)))
	return nil
}

// Pending returns up to limit unsent messages, oldest first.
func (o *Outbox) Pending(ctx context.Context, limit int) ([]models.MailMessage, error) {
	rows, err := o.db.QueryContext(ctx, `
		SELECT id, recipient, subject, body, attempts, created_at, last_attempt
		FROM mail_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending mail: %w", err)
	}
	defer rows.Close()

	var messages []models.MailMessage
	for rows.Next() {
		var (
			msg         models.MailMessage
			createdAt   string
			lastAttempt sql.NullString
		)
		if err := rows.Scan(&msg.ID, &msg.Recipient, &msg.Subject, &msg.Body, &msg.Attempts, &createdAt, &lastAttempt); err != nil {
			return nil, fmt.Errorf("failed to scan mail: %w", err)
		}
		if msg.CreatedAt, err = database.ParseTime(createdAt); err != nil {
			return nil, err
		}
		if msg.LastAttempt, err = database.ParseNullTime(lastAttempt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return messages, nil
}

// MarkSent records successful delivery of the given messages.
func (o *Outbox) MarkSent(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	now := database.FormatTime(time.Now())
	query, args := inClause("UPDATE mail_outbox SET sent_at = ?, last_attempt = ? WHERE id IN", ids, now, now)
	if _, err := o.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark mail sent: %w", err)
	}
	return nil
}

// IncrementAttempts records a failed delivery attempt.
func (o *Outbox) IncrementAttempts(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args := inClause("UPDATE mail_outbox SET attempts = attempts + 1, last_attempt = ? WHERE id IN", ids, database.FormatTime(time.Now()))
	if _, err := o.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to increment attempts: %w", err)
	}
	return nil
}

// PendingCount returns the number of unsent messages.
func (o *Outbox) PendingCount(ctx context.Context) (int, error) {
	var count int
	err := o.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mail_outbox WHERE sent_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending count: %w", err)
	}
	return count, nil
}

// Cleanup removes messages older than olderThan that were either delivered or have
// failed more than maxAttempts times.
func (o *Outbox) Cleanup(ctx context.Context, olderThan time.Duration, maxAttempts int) (int64, error) {
	cutoff := database.FormatTime(time.Now().Add(-olderThan))
	result, err := o.db.ExecContext(ctx, `
		DELETE FROM mail_outbox
		WHERE created_at < ? AND (sent_at IS NOT NULL OR attempts > ?)
	`, cutoff, maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup mail: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		o.logger.Info("Cleaned up old mail", zap.Int64("count", rowsAffected))
	}
	return rowsAffected, nil
}

func inClause(prefix string, ids []int64, leading ...any) (string, []any) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(leading)+len(ids))
	args = append(args, leading...)
	for _, id := range ids {
		args = append(args, id)
	}
	return prefix + " (" + placeholders + ")", args
}

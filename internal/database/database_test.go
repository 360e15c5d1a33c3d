package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewAppliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "worklog.db")
	db, err := New(path, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	version, err := db.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].version, version)

	for _, table := range []string{"users", "work_entries", "password_reset_tokens", "mail_outbox"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	require.NoError(t, db.Health(context.Background()))
}

func TestNewIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worklog.db")

	first, err := New(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(path, zap.NewNop())
	require.NoError(t, err)
	defer second.Close()

	var applied int
	require.NoError(t, second.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, len(migrations), applied)
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "worklog.db"), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	now := FormatTime(time.Now())
	_, err = db.Exec(`INSERT INTO work_entries
		(owner_id, work_date, project, start_time, end_time, hours, hourly_rate, total_amount, created_at, updated_at)
		VALUES (999, '2026-01-05', 'X', '09:00', '10:00', 1, 25, 25, ?, ?)`, now, now)
	assert.Error(t, err)
}

func TestTimeRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 15, 123456000, time.FixedZone("AEDT", 11*3600))
	stored := FormatTime(ts)
	assert.Equal(t, "2026-03-01 22:30:15.123456", stored)

	parsed, err := ParseTime(stored)
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))

	none, err := ParseNullTime(sql.NullString{})
	require.NoError(t, err)
	assert.Nil(t, none)
}

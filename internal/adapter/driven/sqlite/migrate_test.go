package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, RunMigrations(db.Writer), "second run is a no-op")

	var count int
	err := db.Reader.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'integrations'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIntegrationsTable_RejectsEmptyToken(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Writer.ExecContext(context.Background(),
		`INSERT INTO integrations (id, user_id, username, access_token, connected_at) VALUES ('ghi_x', '1', 'u', '', '2026-01-01T00:00:00Z')`)
	assert.Error(t, err)
}

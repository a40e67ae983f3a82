package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB opens a migrated, named shared in-memory database unique to t.
// Writer and reader see the same data through cache=shared.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
		url.PathEscape(t.Name()),
	)

	writer, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "open writer")
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "open reader")
	reader.SetMaxOpenConns(4)

	db := &DB{Writer: writer, Reader: reader, path: dsn}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, writer.PingContext(ctx), "ping writer")
	require.NoError(t, reader.PingContext(ctx), "ping reader")
	require.NoError(t, RunMigrations(db.Writer), "run migrations")

	return db
}

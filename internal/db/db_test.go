package db_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/idiomle/apps/go-server/internal/db"
)

func TestOpen_AppliesEmbeddedMigrations(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	for _, table := range []string{"users", "games", "daily_results", "kv_entries"} {
		var name string
		err := conn.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 3, n)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	extra := fstest.MapFS{
		"sql/0001_extra.sql": {Data: []byte(`CREATE TABLE extra (id INTEGER PRIMARY KEY);`)},
	}
	require.NoError(t, db.Migrate(ctx, conn, extra))
	require.NoError(t, db.Migrate(ctx, conn, extra))

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM _migrations WHERE name='sql/0001_extra.sql'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestMigrate_ReportsBrokenScript(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	broken := fstest.MapFS{
		"sql/0009_broken.sql": {Data: []byte(`CREATE TABLE oops (`)},
	}
	err = db.Migrate(ctx, conn, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0009_broken.sql")
}

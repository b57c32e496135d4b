package db

import (
	"context"
	"io/fs"
	"testing"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/real-comp/mvr-common/internal/db/dbtest"
	"github.com/real-comp/mvr-common/internal/db/migrations"
)

func appliedMigrationIDs(t *testing.T, pool ConnectionPool) []string {
	t.Helper()
	sqlxDB, err := pool.SqlxDB(context.Background())
	require.NoError(t, err)
	var ids []string
	require.NoError(t, sqlxDB.Select(&ids, "SELECT id FROM gorp_migrations ORDER BY id"))
	return ids
}

func TestMigrate_up_1(t *testing.T) {
	ctx := context.Background()
	dbt := dbtest.OpenWithoutMigrations(t)
	defer dbt.Close()

	n, err := Migrate(ctx, dbt.DSN, migrate.Up, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pool, err := OpenDBConnectionPool(dbt.DSN)
	require.NoError(t, err)
	defer pool.Close()

	assert.Equal(t, []string{"2026-10-17.0-mvr_documents.sql"}, appliedMigrationIDs(t, pool))
}

func TestMigrate_up_2_down_1(t *testing.T) {
	ctx := context.Background()
	dbt := dbtest.OpenWithoutMigrations(t)
	defer dbt.Close()

	n, err := Migrate(ctx, dbt.DSN, migrate.Up, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Migrate(ctx, dbt.DSN, migrate.Down, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pool, err := OpenDBConnectionPool(dbt.DSN)
	require.NoError(t, err)
	defer pool.Close()

	assert.Equal(t, []string{"2026-10-17.0-mvr_documents.sql"}, appliedMigrationIDs(t, pool))
}

func TestMigrate_upall_down_all(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenWithoutMigrations(t)
	defer db.Close()

	var count int
	err := fs.WalkDir(migrations.FS, ".", func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		if !d.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)

	n, err := Migrate(ctx, db.DSN, migrate.Up, 0)
	require.NoError(t, err)
	require.Equal(t, count, n)

	n, err = Migrate(ctx, db.DSN, migrate.Down, count)
	require.NoError(t, err)
	require.Equal(t, count, n)

	pool, err := OpenDBConnectionPool(db.DSN)
	require.NoError(t, err)
	defer pool.Close()

	row, err := QueryOne[struct {
		Count int `db:"count"`
	}](ctx, pool, "SELECT COUNT(*) AS count FROM gorp_migrations")
	require.NoError(t, err)
	assert.Equal(t, 0, row.Count)
}

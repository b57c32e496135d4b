package cmd

import (
	"context"
	"testing"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/stellar/go/support/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/real-comp/mvr-common/internal/db/dbtest"
)

func TestExecuteMigrations(t *testing.T) {
	ctx := context.Background()
	dbt := dbtest.OpenWithoutMigrations(t)
	defer dbt.Close()

	getEntries := log.DefaultLogger.StartTest(log.InfoLevel)
	require.NoError(t, executeMigrations(ctx, dbt.DSN, migrate.Up, 0))
	require.NoError(t, executeMigrations(ctx, dbt.DSN, migrate.Up, 0))
	require.NoError(t, executeMigrations(ctx, dbt.DSN, migrate.Down, 1))

	entries := getEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, "Successfully applied 2 migrations up.", entries[0].Message)
	assert.Equal(t, "No migrations applied.", entries[1].Message)
	assert.Equal(t, "Successfully applied 1 migrations down.", entries[2].Message)
}

func TestMigrationDirectionStr(t *testing.T) {
	assert.Equal(t, "up", migrationDirectionStr(migrate.Up))
	assert.Equal(t, "down", migrationDirectionStr(migrate.Down))
}

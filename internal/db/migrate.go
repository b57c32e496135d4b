package db

import (
	"context"
	"fmt"
	"net/http"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/real-comp/mvr-common/internal/db/migrations"
	"github.com/real-comp/mvr-common/internal/utils"
)

// Migrate applies up to count migrations in direction, all of them when count is 0. The migration dialect follows
// the driver chosen for databaseURL.
func Migrate(ctx context.Context, databaseURL string, direction migrate.MigrationDirection, count int) (int, error) {
	dbConnectionPool, err := OpenDBConnectionPool(databaseURL)
	if err != nil {
		return 0, fmt.Errorf("connecting to the database: %w", err)
	}
	defer utils.DeferredClose(ctx, dbConnectionPool, "closing dbConnectionPool in the Migrate function")

	m := migrate.HttpFileSystemMigrationSource{FileSystem: http.FS(migrations.FS)}
	sqlxDB, err := dbConnectionPool.SqlxDB(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching sqlx.DB: %w", err)
	}

	appliedMigrationsCount, err := migrate.ExecMax(sqlxDB.DB, dbConnectionPool.DriverName(), m, direction, count)
	if err != nil {
		return appliedMigrationsCount, fmt.Errorf("applying migrations: %w", err)
	}
	return appliedMigrationsCount, nil
}

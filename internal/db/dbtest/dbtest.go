// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	migrate "github.com/rubenv/sql-migrate"

	"github.com/real-comp/mvr-common/internal/db/migrations"
)

// PostgresURLEnv names the environment variable holding a postgres URL for tests that need postgres features.
const PostgresURLEnv = "MVR_TEST_DATABASE_URL"

type DB struct {
	// DSN is the database URL accepted by db.OpenDBConnectionPool.
	DSN  string
	path string
	t    *testing.T
	conn *sqlx.DB
}

// Open creates an empty database file and applies every migration.
func Open(t *testing.T) *DB {
	t.Helper()
	db := OpenWithoutMigrations(t)

	conn := db.Open()
	m := migrate.HttpFileSystemMigrationSource{FileSystem: http.FS(migrations.FS)}
	if _, err := migrate.Exec(conn.DB, "sqlite3", m, migrate.Up); err != nil {
		t.Fatal(err)
	}
	return db
}

// OpenWithoutMigrations creates an empty database file.
func OpenWithoutMigrations(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mvr.db")
	return &DB{DSN: "sqlite3://" + path, path: path, t: t}
}

// Open returns a connection to the database, shared by later calls.
func (db *DB) Open() *sqlx.DB {
	if db.conn != nil {
		return db.conn
	}
	conn, err := sqlx.Open("sqlite3", db.path)
	if err != nil {
		db.t.Fatal(err)
	}
	db.conn = conn
	return conn
}

func (db *DB) Close() {
	if db.conn != nil {
		if err := db.conn.Close(); err != nil {
			db.t.Error(err)
		}
		db.conn = nil
	}
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/stellar/go/support/log"
)

// ConnectionPool is the sqlx pool shared by the data models.
type ConnectionPool interface {
	SQLExecuter
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (Transaction, error)
	Close() error
	SqlxDB(ctx context.Context) (*sqlx.DB, error)
}

type ConnectionPoolImplementation struct {
	*sqlx.DB
}

const (
	MaxDBConnIdleTime = 10 * time.Second
	MaxOpenDBConns    = 30

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	sqliteScheme = "sqlite3://"
)

// ParseDataSourceName returns the driver and driver specific DSN for dataSourceName. URLs starting with "sqlite3://"
// or "file:" open a SQLite database, anything else is handed to the postgres driver.
func ParseDataSourceName(dataSourceName string) (driverName, dsn string) {
	switch {
	case strings.HasPrefix(dataSourceName, sqliteScheme):
		return DriverSQLite, strings.TrimPrefix(dataSourceName, sqliteScheme)
	case strings.HasPrefix(dataSourceName, "file:"):
		return DriverSQLite, dataSourceName
	default:
		return DriverPostgres, dataSourceName
	}
}

// OpenDBConnectionPool opens and pings the database behind dataSourceName. SQLite pools are limited to one
// connection.
func OpenDBConnectionPool(dataSourceName string) (ConnectionPool, error) {
	driverName, dsn := ParseDataSourceName(dataSourceName)
	sqlxDB, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s connection pool: %w", driverName, err)
	}
	sqlxDB.SetConnMaxIdleTime(MaxDBConnIdleTime)
	if driverName == DriverSQLite {
		sqlxDB.SetMaxOpenConns(1)
	} else {
		sqlxDB.SetMaxOpenConns(MaxOpenDBConns)
	}

	if err = sqlxDB.Ping(); err != nil {
		_ = sqlxDB.Close()
		return nil, fmt.Errorf("pinging %s connection pool: %w", driverName, err)
	}
	return &ConnectionPoolImplementation{DB: sqlxDB}, nil
}

//nolint:wrapcheck
func (db *ConnectionPoolImplementation) BeginTxx(ctx context.Context, opts *sql.TxOptions) (Transaction, error) {
	return db.DB.BeginTxx(ctx, opts)
}

func (db *ConnectionPoolImplementation) SqlxDB(_ context.Context) (*sqlx.DB, error) {
	return db.DB, nil
}

// Transaction is the subset of *sqlx.Tx used inside RunInTransaction.
type Transaction interface {
	SQLExecuter
	Rollback() error
	Commit() error
}

// SQLExecuter is satisfied by both the pool and a transaction, so model methods run either way.
type SQLExecuter interface {
	DriverName() string
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	sqlx.PreparerContext
	sqlx.QueryerContext
	Rebind(query string) string
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// RunInTransaction runs atomicFunction inside a database transaction, committing when it returns nil.
func RunInTransaction(ctx context.Context, dbConnectionPool ConnectionPool, opts *sql.TxOptions, atomicFunction func(dbTx Transaction) error) error {
	_, err := RunInTransactionWithResult(ctx, dbConnectionPool, opts, func(dbTx Transaction) (struct{}, error) {
		return struct{}{}, atomicFunction(dbTx)
	})
	return err
}

// RunInTransactionWithResult is RunInTransaction for functions that produce a value. The transaction is rolled back
// when atomicFunction or the commit fails.
func RunInTransactionWithResult[T any](ctx context.Context, dbConnectionPool ConnectionPool, opts *sql.TxOptions, atomicFunction func(dbTx Transaction) (T, error)) (result T, err error) {
	var zero T
	dbTx, err := dbConnectionPool.BeginTxx(ctx, opts)
	if err != nil {
		return zero, fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		log.Ctx(ctx).Errorf("Rolling back transaction: %v", err)
		if rollbackErr := dbTx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			log.Ctx(ctx).Errorf("Rolling back transaction failed: %v", rollbackErr)
		}
	}()

	result, err = atomicFunction(dbTx)
	if err != nil {
		return zero, fmt.Errorf("running transaction: %w", err)
	}
	if err = dbTx.Commit(); err != nil {
		return zero, fmt.Errorf("committing transaction: %w", err)
	}
	return result, nil
}

package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/real-comp/mvr-common/internal/utils"
)

// BuildAdvisoryLockKey guards document writes so two builds never upsert into the same database concurrently.
const BuildAdvisoryLockKey = 20261017

var ErrAdvisoryLockUnsupported = errors.New("advisory locks are only supported on postgres")

// AdvisoryLock is a session level postgres advisory lock pinned to one pool connection.
type AdvisoryLock struct {
	conn    *sqlx.Conn
	lockKey int
}

// AcquireAdvisoryLock attempt to acquire an advisory lock on the provided lockKey. The returned lock is nil when it
// is held by another session.
func AcquireAdvisoryLock(ctx context.Context, dbConnectionPool ConnectionPool, lockKey int) (*AdvisoryLock, error) {
	if dbConnectionPool.DriverName() != DriverPostgres {
		return nil, ErrAdvisoryLockUnsupported
	}
	sqlxDB, err := dbConnectionPool.SqlxDB(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching sqlx.DB: %w", err)
	}
	conn, err := sqlxDB.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("reserving connection for advisory lock: %w", err)
	}

	acquired := false
	if err := conn.GetContext(ctx, &acquired, "SELECT pg_try_advisory_lock($1)", lockKey); err != nil {
		utils.DeferredClose(ctx, conn, "closing advisory lock connection")
		return nil, fmt.Errorf("querying pg_try_advisory_lock(%v): %w", lockKey, err)
	}
	if !acquired {
		utils.DeferredClose(ctx, conn, "closing advisory lock connection")
		return nil, nil
	}
	return &AdvisoryLock{conn: conn, lockKey: lockKey}, nil
}

// Release releases the lock and returns its connection to the pool.
func (l *AdvisoryLock) Release(ctx context.Context) error {
	defer utils.DeferredClose(ctx, l.conn, "closing advisory lock connection")

	if _, err := l.conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.lockKey); err != nil {
		return fmt.Errorf("executing pg_advisory_unlock(%v): %w", l.lockKey, err)
	}
	return nil
}

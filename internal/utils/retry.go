package utils

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stellar/go/support/log"
)

// RetryConfig holds configuration for retry operations.
type RetryConfig struct {
	MaxRetries uint
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultDBRetryConfig is used for document writes.
var DefaultDBRetryConfig = RetryConfig{
	MaxRetries: 5,
	BaseDelay:  100 * time.Millisecond,
	MaxDelay:   2 * time.Second,
}

// IsRetryableDBError checks if the error is a transient database error that can be retried. This includes Postgres
// deadlocks and serialization failures, and SQLite busy or locked databases.
func IsRetryableDBError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40P01": // deadlock_detected
			return true
		case "40001": // serialization_failure
			return true
		}
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// RetryDBOperation executes fn and retries transient database errors using the default configuration.
func RetryDBOperation(ctx context.Context, fn func() error) error {
	return RetryWithConfig(ctx, DefaultDBRetryConfig, IsRetryableDBError, fn)
}

// RetryWithConfig executes fn and retries it with exponential backoff and jitter while isRetryable reports true.
// The last error is returned once the attempts are exhausted.
func RetryWithConfig(ctx context.Context, config RetryConfig, isRetryable func(error) bool, fn func() error) error {
	//nolint:wrapcheck
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(config.MaxRetries+1),
		retry.Delay(config.BaseDelay),
		retry.MaxDelay(config.MaxDelay),
		retry.MaxJitter(config.BaseDelay/2),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warnf("Retryable error (attempt %d/%d): %v", n+1, config.MaxRetries+1, err)
		}),
	)
}

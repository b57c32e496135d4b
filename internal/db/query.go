package db

import (
	"context"
	"fmt"
)

// QueryOne executes a query that returns exactly one row and scans it into a struct of type T using its `db` tags.
func QueryOne[T any](ctx context.Context, sqlExec SQLExecuter, query string, args ...any) (*T, error) {
	var result T
	if err := sqlExec.GetContext(ctx, &result, sqlExec.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying row: %w", err)
	}
	return &result, nil
}

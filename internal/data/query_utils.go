package data

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/real-comp/mvr-common/internal/db"
)

// PrepareNamedQuery binds the named arguments of namedQuery, expands slice arguments into IN lists and rebinds the
// placeholders for the driver of connectionPool.
func PrepareNamedQuery(ctx context.Context, connectionPool db.SQLExecuter, namedQuery string, argsMap map[string]interface{}) (string, []interface{}, error) {
	query, args, err := sqlx.Named(namedQuery, argsMap)
	if err != nil {
		return "", nil, fmt.Errorf("replacing attributes with bindvars: %w", err)
	}
	query, args, err = sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("expanding slice arguments: %w", err)
	}
	query = connectionPool.Rebind(query)

	return query, args, nil
}

// Package commonschema creates the PostgreSQL schema shared by every
// PostgreSQL-based store.
package commonschema

import (
	"context"
	"database/sql"
	_ "embed"

	"github.com/dogmatiq/propertykit/driver/sql/postgres/internal/pgerror"
)

//go:embed schema.sql
var schema string

// Create creates the common schema, followed by each of the additional DDL
// statements, within a single transaction.
func Create(
	ctx context.Context,
	db *sql.DB,
	additional ...string,
) error {
	return pgerror.Retry(
		ctx,
		db,
		func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, schema); err != nil {
				return err
			}

			for _, q := range additional {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					return err
				}
			}

			return nil
		},
		// Concurrent CREATE ... IF NOT EXISTS statements can still race on
		// the system catalogs.
		pgerror.CodeUniqueViolation,
	)
}

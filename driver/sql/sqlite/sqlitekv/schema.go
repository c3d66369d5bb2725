package sqlitekv

import (
	"context"
	"database/sql"
	_ "embed"
)

//go:embed schema.sql
var schema string

// CreateSchema creates the SQLite schema elements required by [Store].
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

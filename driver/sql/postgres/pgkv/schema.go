package pgkv

import (
	"context"
	"database/sql"
	_ "embed"

	"github.com/dogmatiq/propertykit/driver/sql/postgres/internal/commonschema"
)

//go:embed schema.sql
var schema string

// CreateSchema creates the PostgreSQL schema elements required by [Store].
func CreateSchema(ctx context.Context, db *sql.DB) error {
	return commonschema.Create(ctx, db, schema)
}

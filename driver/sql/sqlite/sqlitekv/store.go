// Package sqlitekv provides a [kv.Store] backed by an SQLite database.
//
// It is intended for use with the pure-Go modernc.org/sqlite driver, which
// registers itself under the name "sqlite".
package sqlitekv

import (
	"context"
	"database/sql"

	"github.com/dogmatiq/propertykit/kv"
)

// Store is an implementation of [kv.Store] that stores keyspaces in an SQLite
// database.
//
// The schema must be created with [CreateSchema] before the store is used.
type Store struct {
	DB *sql.DB
}

// Open returns the keyspace with the given name.
func (s *Store) Open(ctx context.Context, name string) (kv.Keyspace, error) {
	return &keyspace{
		name: name,
		db:   s.DB,
	}, ctx.Err()
}

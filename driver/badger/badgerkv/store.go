// Package badgerkv provides a [kv.Store] backed by a BadgerDB database.
package badgerkv

import (
	"context"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dogmatiq/propertykit/kv"
	"google.golang.org/protobuf/encoding/protowire"
)

// Store is an implementation of [kv.Store] that persists keyspaces in a
// BadgerDB database.
//
// Every keyspace shares the same database. Each key is prefixed with the
// length-delimited keyspace name, so no keyspace's prefix is a prefix of
// another's.
type Store struct {
	DB *badger.DB
}

// Open returns the keyspace with the given name.
func (s *Store) Open(ctx context.Context, name string) (kv.Keyspace, error) {
	return &keyspace{
		name:   name,
		prefix: protowire.AppendString(nil, name),
		db:     s.DB,
	}, ctx.Err()
}

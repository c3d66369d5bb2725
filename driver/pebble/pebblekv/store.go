// Package pebblekv provides a [kv.Store] backed by a Pebble database.
package pebblekv

import (
	"context"

	"github.com/cockroachdb/pebble/v2"
	"github.com/dogmatiq/propertykit/kv"
	"google.golang.org/protobuf/encoding/protowire"
)

// Store is an implementation of [kv.Store] that persists keyspaces in a Pebble
// database.
//
// Every keyspace shares the same database. Each key is prefixed with the
// length-delimited keyspace name.
type Store struct {
	DB *pebble.DB

	// NoSync disables syncing the write-ahead log after each write. It trades
	// durability of the most recent writes for throughput.
	NoSync bool
}

// Open returns the keyspace with the given name.
func (s *Store) Open(ctx context.Context, name string) (kv.Keyspace, error) {
	opts := pebble.Sync
	if s.NoSync {
		opts = pebble.NoSync
	}

	prefix := protowire.AppendString(nil, name)

	return &keyspace{
		name:  name,
		db:    s.DB,
		write: opts,
		lower: prefix,
		upper: prefixEnd(prefix),
	}, ctx.Err()
}

// prefixEnd returns the exclusive upper bound of the keys that begin with
// prefix.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)

	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}

	// A length-delimited name always ends in a varint whose final byte is
	// below 0x80, so the loop above always returns.
	panic("keyspace prefix has no upper bound")
}

package memorykv

import (
	"context"
	"sync"

	"github.com/dogmatiq/propertykit/kv"
)

// Store is an in-memory implementation of [kv.Store].
//
// The zero value is an unbounded store. Limits may be set to emulate the
// capacity of a small flash partition.
type Store struct {
	// Limits constrains the size of each keyspace. It must not be modified
	// after the first call to Open.
	Limits Limits

	keyspaces sync.Map // map[string]*state
}

// Limits describes the capacity of each keyspace in a [Store]. A zero value in
// any field means that dimension is unbounded.
type Limits struct {
	// MaxKeySize is the maximum length of a key, in bytes.
	MaxKeySize int

	// MaxValueSize is the maximum length of a value, in bytes.
	MaxValueSize int

	// MaxEntries is the maximum number of key/value pairs in a keyspace.
	MaxEntries int
}

// Open returns the keyspace with the given name.
func (s *Store) Open(ctx context.Context, name string) (kv.Keyspace, error) {
	st, ok := s.keyspaces.Load(name)

	if !ok {
		st, _ = s.keyspaces.LoadOrStore(
			name,
			&state{},
		)
	}

	return &keyspace{
		name:   name,
		state:  st.(*state),
		limits: s.Limits,
	}, ctx.Err()
}

package kv

import "context"

// WithNamePrefix returns a [Store] that adds the given prefix to all keyspace
// names.
func WithNamePrefix(store Store, prefix string) Store {
	return prefixedStore{store, prefix}
}

// prefixedStore is a [Store] that adds a prefix to all keyspace names.
type prefixedStore struct {
	Store
	prefix string
}

func (s prefixedStore) Open(ctx context.Context, name string) (Keyspace, error) {
	ks, err := s.Store.Open(ctx, s.prefix+name)
	if err != nil {
		return nil, err
	}

	return prefixedKeyspace{ks, name}, nil
}

// prefixedKeyspace is a [Keyspace] opened by a [prefixedStore].
type prefixedKeyspace struct {
	Keyspace
	name string
}

func (ks prefixedKeyspace) Name() string {
	return ks.name
}

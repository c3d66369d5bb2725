package pebblekv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/cockroachdb/pebble/v2"
	"github.com/dogmatiq/propertykit/kv"
)

type keyspace struct {
	name         string
	db           *pebble.DB
	write        *pebble.WriteOptions
	lower, upper []byte
}

func (ks *keyspace) Name() string {
	return ks.name
}

func (ks *keyspace) Get(ctx context.Context, k []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, closer, err := ks.db.Get(ks.key(k))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("cannot get %q from %q: %w", k, ks.name, err)
	}
	defer closer.Close()

	return bytes.Clone(v), nil
}

func (ks *keyspace) Has(ctx context.Context, k []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, closer, err := ks.db.Get(ks.key(k))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("cannot check %q in %q: %w", k, ks.name, err)
	}

	return true, closer.Close()
}

func (ks *keyspace) Set(ctx context.Context, k, v []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error
	if len(v) == 0 {
		err = ks.db.Delete(ks.key(k), ks.write)
	} else {
		err = ks.db.Set(ks.key(k), v, ks.write)
	}

	if err != nil {
		return fmt.Errorf("cannot set %q in %q: %w", k, ks.name, err)
	}

	return nil
}

func (ks *keyspace) Range(ctx context.Context, fn kv.RangeFunc) error {
	it, err := ks.db.NewIter(&pebble.IterOptions{
		LowerBound: ks.lower,
		UpperBound: ks.upper,
	})
	if err != nil {
		return fmt.Errorf("cannot range over %q: %w", ks.name, err)
	}
	defer it.Close()

	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		k := bytes.Clone(it.Key()[len(ks.lower):])

		v, err := it.ValueAndErr()
		if err != nil {
			return fmt.Errorf("cannot read value from %q: %w", ks.name, err)
		}

		ok, err := fn(ctx, k, bytes.Clone(v))
		if !ok || err != nil {
			return err
		}
	}

	return it.Error()
}

func (ks *keyspace) EraseAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := ks.db.DeleteRange(ks.lower, ks.upper, ks.write); err != nil {
		return fmt.Errorf("cannot erase %q: %w", ks.name, err)
	}

	return nil
}

func (ks *keyspace) Close() error {
	return nil
}

// key returns the database key for k.
func (ks *keyspace) key(k []byte) []byte {
	return append(slices.Clip(ks.lower), k...)
}

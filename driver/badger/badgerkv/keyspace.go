package badgerkv

import (
	"context"
	"errors"
	"fmt"
	"slices"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dogmatiq/propertykit/kv"
)

type keyspace struct {
	name   string
	prefix []byte
	db     *badger.DB
}

func (ks *keyspace) Name() string {
	return ks.name
}

func (ks *keyspace) Get(ctx context.Context, k []byte) (v []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = ks.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(ks.key(k))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		} else if err != nil {
			return err
		}

		v, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("cannot get %q from %q: %w", k, ks.name, err)
	}

	return v, nil
}

func (ks *keyspace) Has(ctx context.Context, k []byte) (ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	err = ks.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(ks.key(k))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		ok = err == nil
		return err
	})
	if err != nil {
		return false, fmt.Errorf("cannot check %q in %q: %w", k, ks.name, err)
	}

	return ok, nil
}

func (ks *keyspace) Set(ctx context.Context, k, v []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := ks.key(k)
	value := slices.Clone(v)

	if err := ks.db.Update(func(txn *badger.Txn) error {
		if len(value) == 0 {
			return txn.Delete(key)
		}
		return txn.Set(key, value)
	}); err != nil {
		return fmt.Errorf("cannot set %q in %q: %w", k, ks.name, err)
	}

	return nil
}

func (ks *keyspace) Range(ctx context.Context, fn kv.RangeFunc) error {
	return ks.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = ks.prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(ks.prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()

			v, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("cannot read value from %q: %w", ks.name, err)
			}

			k := item.KeyCopy(nil)[len(ks.prefix):]

			ok, err := fn(ctx, k, v)
			if !ok || err != nil {
				return err
			}
		}

		return nil
	})
}

func (ks *keyspace) EraseAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := ks.db.DropPrefix(ks.prefix); err != nil {
		return fmt.Errorf("cannot erase %q: %w", ks.name, err)
	}

	return nil
}

func (ks *keyspace) Close() error {
	return nil
}

// key returns the database key for k.
func (ks *keyspace) key(k []byte) []byte {
	return append(slices.Clip(ks.prefix), k...)
}

package memorykv

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/dogmatiq/propertykit/driver/memory/internal/clone"
	"github.com/dogmatiq/propertykit/kv"
)

// ErrCapacityExceeded is returned by [kv.Keyspace.Set] when a key/value pair
// would exceed the [Limits] of the store.
var ErrCapacityExceeded = errors.New("keyspace capacity exceeded")

// state is the in-memory state of a keyspace.
type state struct {
	sync.RWMutex
	Values map[string][]byte
}

// keyspace is an implementation of [kv.Keyspace] that manipulates a
// keyspace's in-memory [state].
type keyspace struct {
	name   string
	state  *state
	limits Limits
}

func (ks *keyspace) Name() string {
	return ks.name
}

func (ks *keyspace) Get(ctx context.Context, k []byte) ([]byte, error) {
	if ks.state == nil {
		panic("keyspace is closed")
	}

	ks.state.RLock()
	defer ks.state.RUnlock()

	return clone.Clone(ks.state.Values[string(k)]), ctx.Err()
}

func (ks *keyspace) Has(ctx context.Context, k []byte) (bool, error) {
	if ks.state == nil {
		panic("keyspace is closed")
	}

	ks.state.RLock()
	defer ks.state.RUnlock()

	_, ok := ks.state.Values[string(k)]
	return ok, ctx.Err()
}

func (ks *keyspace) Set(ctx context.Context, k, v []byte) error {
	if ks.state == nil {
		panic("keyspace is closed")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	v = clone.Clone(v)

	ks.state.Lock()
	defer ks.state.Unlock()

	if len(v) == 0 {
		delete(ks.state.Values, string(k))
		return nil
	}

	if err := ks.checkLimits(k, v); err != nil {
		return err
	}

	if ks.state.Values == nil {
		ks.state.Values = map[string][]byte{}
	}

	ks.state.Values[string(k)] = v

	return nil
}

// checkLimits returns an error if setting k to v would exceed the keyspace's
// limits. It assumes the write lock is held.
func (ks *keyspace) checkLimits(k, v []byte) error {
	if n := ks.limits.MaxKeySize; n != 0 && len(k) > n {
		return fmt.Errorf("%w: key is %d bytes, limit is %d", ErrCapacityExceeded, len(k), n)
	}

	if n := ks.limits.MaxValueSize; n != 0 && len(v) > n {
		return fmt.Errorf("%w: value is %d bytes, limit is %d", ErrCapacityExceeded, len(v), n)
	}

	if n := ks.limits.MaxEntries; n != 0 && len(ks.state.Values) >= n {
		if _, ok := ks.state.Values[string(k)]; !ok {
			return fmt.Errorf("%w: keyspace holds %d entries, limit is %d", ErrCapacityExceeded, len(ks.state.Values), n)
		}
	}

	return nil
}

func (ks *keyspace) Range(ctx context.Context, fn kv.RangeFunc) error {
	if ks.state == nil {
		panic("keyspace is closed")
	}

	ks.state.RLock()
	values := maps.Clone(ks.state.Values)
	ks.state.RUnlock()

	for k, v := range values {
		ok, err := fn(ctx, []byte(k), clone.Clone(v))
		if !ok || err != nil {
			return err
		}
	}

	return nil
}

func (ks *keyspace) EraseAll(ctx context.Context) error {
	if ks.state == nil {
		panic("keyspace is closed")
	}

	ks.state.Lock()
	defer ks.state.Unlock()

	clear(ks.state.Values)

	return ctx.Err()
}

func (ks *keyspace) Close() error {
	if ks.state == nil {
		return errors.New("keyspace is already closed")
	}

	ks.state = nil

	return nil
}

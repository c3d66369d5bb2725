package purge

import (
	"context"
	"fmt"

	"github.com/dogmatiq/propertykit/property"
	"github.com/dogmatiq/propertykit/set"
	"google.golang.org/protobuf/encoding/protowire"
)

// Tracker records the properties that have been seen during a session.
//
// The zero value is an empty, unbounded tracker. A Tracker is not safe for
// concurrent use.
type Tracker struct {
	seen *set.Set
}

// NewTracker returns a tracker that remembers at most n properties.
func NewTracker(n int) *Tracker {
	return &Tracker{seen: set.NewBounded(n)}
}

// Seen records that the property at path within the interface named iface
// has been seen.
//
// It returns an error matching [fault.ErrOutOfMemory] if the tracker is bounded
// and full.
func (t *Tracker) Seen(iface, path string) error {
	if t.seen == nil {
		t.seen = &set.Set{}
	}

	if err := t.seen.Add(member(iface, path)); err != nil {
		return fmt.Errorf("unable to track %s%s: %w", iface, path, err)
	}

	return nil
}

// HasSeen returns true if the property at path within the interface named
// iface has been seen.
func (t *Tracker) HasSeen(iface, path string) bool {
	return t.seen != nil && t.seen.Has(member(iface, path))
}

// Len returns the number of distinct properties that have been seen.
func (t *Tracker) Len() int {
	if t.seen == nil {
		return 0
	}
	return t.seen.Len()
}

// Reset forgets every property, ready for a new session.
func (t *Tracker) Reset() {
	if t.seen != nil {
		t.seen.Destroy()
	}
}

// Purge deletes the properties in s that are accepted by filter but have not
// been seen. It returns the number of properties deleted.
//
// A deletion failure is returned with the classification assigned by
// [property.Store.Delete].
func (t *Tracker) Purge(ctx context.Context, s *property.Store, filter Filter) (int, error) {
	keys, err := List(ctx, s, filter)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, k := range keys {
		if t.HasSeen(k.Interface, k.Path) {
			continue
		}

		if err := s.Delete(ctx, k.Interface, k.Path); err != nil {
			return n, fmt.Errorf("unable to purge %s: %w", k, err)
		}

		n++
	}

	return n, nil
}

// member returns the set member that represents a property. The tracker owns
// the returned slice.
func member(iface, path string) []byte {
	m := make([]byte, 0, len(iface)+len(path)+4)
	m = protowire.AppendString(m, iface)
	m = protowire.AppendString(m, path)
	return m
}

// Package list provides an ordered container of byte-span references.
package list

import (
	"bytes"
	"iter"

	"github.com/dogmatiq/propertykit/fault"
)

// List is an ordered sequence of byte slices.
//
// A List holds borrowed references. It never copies the payloads it is given
// and never modifies them, except via [List.DestroyAndRelease]. The caller
// must keep the referenced memory alive while it is in the list.
//
// The zero value is an empty, unbounded list. A List is not safe for
// concurrent use.
type List struct {
	items [][]byte
	limit int
}

// NewBounded returns an empty list that holds at most n items.
//
// Appending to a full list fails with [fault.ErrOutOfMemory].
func NewBounded(n int) *List {
	if n <= 0 {
		panic("list limit must be positive")
	}
	return &List{limit: n}
}

// IsEmpty returns true if the list contains no items.
func (l *List) IsEmpty() bool {
	return len(l.items) == 0
}

// Len returns the number of items in the list.
func (l *List) Len() int {
	return len(l.items)
}

// Append adds item to the tail of the list.
//
// If the list is bounded and already full it returns an error that matches
// [fault.ErrOutOfMemory] and the list is left unchanged.
func (l *List) Append(item []byte) error {
	if l.limit != 0 && len(l.items) >= l.limit {
		return fault.ErrOutOfMemory
	}

	l.items = append(l.items, item)
	return nil
}

// RemoveTail removes and returns the most recently appended item.
//
// It returns [fault.ErrNotFound] if the list is empty.
func (l *List) RemoveTail() ([]byte, error) {
	n := len(l.items)
	if n == 0 {
		return nil, fault.ErrNotFound
	}

	item := l.items[n-1]
	l.items[n-1] = nil
	l.items = l.items[:n-1]

	return item, nil
}

// Find returns true if the list contains an item with exactly the same length
// and content as item.
func (l *List) Find(item []byte) bool {
	for _, x := range l.items {
		if bytes.Equal(x, item) {
			return true
		}
	}
	return false
}

// Destroy removes all items from the list without touching the payloads they
// refer to.
func (l *List) Destroy() {
	clear(l.items)
	l.items = nil
}

// DestroyAndRelease removes all items from the list, passing each payload to
// release first.
//
// If release is nil each payload is zeroed instead. Either way, the caller
// must treat every reference previously held by the list as invalid.
func (l *List) DestroyAndRelease(release func([]byte)) {
	for _, item := range l.items {
		if release == nil {
			clear(item)
		} else {
			release(item)
		}
	}

	l.Destroy()
}

// All returns an iterator over the items in the list, from head to tail.
func (l *List) All() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for _, item := range l.items {
			if !yield(item) {
				return
			}
		}
	}
}

// Iterator returns an iterator positioned at the head of the list.
//
// It returns [fault.ErrNotFound] if the list is empty.
func (l *List) Iterator() (*Iterator, error) {
	if l.IsEmpty() {
		return nil, fault.ErrNotFound
	}
	return &Iterator{list: l}, nil
}

// Iterator is a forward-only cursor over a [List].
//
// The list must not be modified while the iterator is in use.
type Iterator struct {
	list  *List
	index int
}

// Item returns the item at the iterator's current position.
func (it *Iterator) Item() []byte {
	return it.list.items[it.index]
}

// HasNext returns true if [Iterator.Advance] would succeed.
func (it *Iterator) HasNext() bool {
	return it.index+1 < len(it.list.items)
}

// Advance moves the iterator to the next item.
//
// It returns [fault.ErrNotFound] if the iterator is already positioned at the
// tail of the list, in which case the position is unchanged.
func (it *Iterator) Advance() error {
	if !it.HasNext() {
		return fault.ErrNotFound
	}

	it.index++
	return nil
}

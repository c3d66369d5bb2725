// Package xatomic contains generic wrappers around sync/atomic.
package xatomic

import "sync/atomic"

// Value is a value of type T that can be replaced while other goroutines are
// reading it.
//
// Keyspace interceptors hold their hooks in a Value so that a test can swap a
// hook while the store is in use. The zero value holds the zero value of T.
type Value[T any] struct {
	p atomic.Pointer[T]
}

// Load returns the most recently stored value, or the zero value of T if
// nothing has been stored.
func (x *Value[T]) Load() T {
	if ptr := x.p.Load(); ptr != nil {
		return *ptr
	}

	var zero T
	return zero
}

// Store replaces the value in x with val.
func (x *Value[T]) Store(val T) {
	x.p.Store(&val)
}

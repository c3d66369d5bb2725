// Package set provides a deduplicating set of byte-span references.
package set

import (
	"iter"

	"github.com/dogmatiq/propertykit/list"
)

// Set is a unique set of byte slices.
//
// Membership is determined by exact length-and-content equality. Like
// [list.List], a Set holds borrowed references and never copies its members.
//
// The zero value is an empty, unbounded set. A Set is not safe for concurrent
// use.
type Set struct {
	members list.List
}

// NewBounded returns an empty set that holds at most n members.
func NewBounded(n int) *Set {
	return &Set{members: *list.NewBounded(n)}
}

// IsEmpty returns true if the set has no members.
func (s *Set) IsEmpty() bool {
	return s.members.IsEmpty()
}

// Len returns the number of members in the set.
func (s *Set) Len() int {
	return s.members.Len()
}

// Has returns true if v is a member of the set.
func (s *Set) Has(v []byte) bool {
	return s.members.Find(v)
}

// Add ensures v is a member of the set.
//
// Adding a value that is already a member succeeds without modifying the set.
// Adding a new member to a full bounded set fails with an error that matches
// [fault.ErrOutOfMemory].
func (s *Set) Add(v []byte) error {
	_, err := s.TryAdd(v)
	return err
}

// TryAdd ensures v is a member of the set. It returns true if v was added, or
// false if it was already a member.
func (s *Set) TryAdd(v []byte) (bool, error) {
	if s.members.Find(v) {
		return false, nil
	}

	if err := s.members.Append(v); err != nil {
		return false, err
	}

	return true, nil
}

// Pop removes and returns a member of the set.
//
// The most recently added member is returned first, however callers should
// not rely on any particular order. It returns [fault.ErrNotFound] if the set
// is empty.
func (s *Set) Pop() ([]byte, error) {
	return s.members.RemoveTail()
}

// All returns an iterator over the members of the set.
func (s *Set) All() iter.Seq[[]byte] {
	return s.members.All()
}

// Destroy removes all members without touching the memory they refer to.
func (s *Set) Destroy() {
	s.members.Destroy()
}

// DestroyAndRelease removes all members, passing each one to release first.
//
// See [list.List.DestroyAndRelease].
func (s *Set) DestroyAndRelease(release func([]byte)) {
	s.members.DestroyAndRelease(release)
}

// Package fault defines the error taxonomy shared by every package in this
// module.
//
// Operations report failures by returning errors that match one of the
// sentinel values below via [errors.Is]. Callers must distinguish business
// outcomes ([ErrNotFound], [ErrTooSmall]) from operational failures
// ([ErrInternal]).
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates malformed input. It is never worth
	// retrying, the caller is at fault.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfMemory indicates that an allocation budget was exhausted. The
	// caller may retry after releasing memory.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrNotFound indicates the absence of a requested key, element or next
	// item. It is an expected outcome, not necessarily a fault.
	ErrNotFound = errors.New("not found")

	// ErrTooSmall indicates that a destination buffer is too small. The caller
	// must query the required size and retry.
	ErrTooSmall = errors.New("buffer too small")

	// ErrInternal indicates a failure of the storage backend or some other
	// machinery that cannot be recovered locally.
	ErrInternal = errors.New("internal error")
)

// Kind is a classification of an error within the taxonomy.
type Kind int

const (
	// KindNone is the kind of a nil error.
	KindNone Kind = iota

	// KindInvalidArgument is the kind of errors matching [ErrInvalidArgument].
	KindInvalidArgument

	// KindOutOfMemory is the kind of errors matching [ErrOutOfMemory].
	KindOutOfMemory

	// KindNotFound is the kind of errors matching [ErrNotFound].
	KindNotFound

	// KindTooSmall is the kind of errors matching [ErrTooSmall].
	KindTooSmall

	// KindInternal is the kind of errors matching [ErrInternal], and of any
	// error that does not match a sentinel at all.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidArgument:
		return "invalid-argument"
	case KindOutOfMemory:
		return "out-of-memory"
	case KindNotFound:
		return "not-found"
	case KindTooSmall:
		return "too-small"
	case KindInternal:
		return "internal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KindOf returns the kind of err.
//
// Internal errors take precedence, so an allocation failure reported as an
// internal error is classified as [KindInternal].
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInternal):
		return KindInternal
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrOutOfMemory):
		return KindOutOfMemory
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrTooSmall):
		return KindTooSmall
	default:
		return KindInternal
	}
}

// IsNotFound returns true if err is caused by [ErrNotFound].
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTooSmall returns true if err is caused by [ErrTooSmall].
func IsTooSmall(err error) bool {
	return errors.Is(err, ErrTooSmall)
}

// Internal returns an error that matches both [ErrInternal] and err.
//
// It returns nil if err is nil.
func Internal(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf(
		"%w: "+format+": %w",
		append(append([]any{ErrInternal}, args...), err)...,
	)
}

// InvalidArgument returns an error that matches [ErrInvalidArgument].
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf(
		"%w: "+format,
		append([]any{ErrInvalidArgument}, args...)...,
	)
}

// TooSmallError is returned when a destination buffer cannot hold the
// requested data. It matches [ErrTooSmall].
type TooSmallError struct {
	// Field names the output that was too small, e.g. "value".
	Field string

	// Required is the number of bytes needed.
	Required int

	// Capacity is the number of bytes that were available.
	Capacity int
}

func (e *TooSmallError) Error() string {
	return fmt.Sprintf(
		"%s buffer too small: need %d bytes, have %d",
		e.Field,
		e.Required,
		e.Capacity,
	)
}

// Is returns true if target is [ErrTooSmall].
func (e *TooSmallError) Is(target error) bool {
	return target == ErrTooSmall
}

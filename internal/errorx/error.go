// Package errorx adds operation context to errors returned by the property
// store and its drivers.
package errorx

import (
	"fmt"

	"github.com/dogmatiq/propertykit/fault"
)

// Wrap prefixes *err with a description of the failed operation, keeping the
// original error in the chain so its [fault.Kind] is unchanged.
//
// A missing property or an undersized buffer is an answer rather than a
// failure, so errors matching [fault.ErrNotFound] or [fault.ErrTooSmall] are
// left as-is for callers that compare them directly.
func Wrap(err *error, format string, args ...any) {
	if err == nil {
		panic("err must not be nil")
	}

	switch {
	case *err == nil:
	case fault.IsNotFound(*err), fault.IsTooSmall(*err):
	default:
		*err = fmt.Errorf(format+": %w", append(args, *err)...)
	}
}

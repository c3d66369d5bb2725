package clone

import (
	"github.com/dogmatiq/dyad"
)

// Clone returns a deep copy of v.
//
// A nil or empty slice is returned as nil, so that an absent value and an empty
// value are indistinguishable to callers.
func Clone(v []byte) []byte {
	if len(v) == 0 {
		return nil
	}
	return dyad.Clone(v)
}

package marshaler

import (
	"bytes"
	"encoding/json"
)

// NewJSON returns a [Marshaler] that encodes values of type T as JSON.
//
// Unmarshaling is strict: fields that T does not declare are rejected, so a
// stored object written by an incompatible version is reported rather than
// silently truncated.
func NewJSON[T any]() Marshaler[T] {
	return New(
		func(v T) ([]byte, error) {
			return json.Marshal(v)
		},
		func(data []byte) (T, error) {
			var v T
			dec := json.NewDecoder(bytes.NewReader(data))
			dec.DisallowUnknownFields()
			return v, dec.Decode(&v)
		},
	)
}

package marshaler

import (
	"google.golang.org/protobuf/proto"
)

// NewProto returns a [Marshaler] for Protocol Buffers messages of type T,
// where T is a pointer to the generated struct S.
//
// Messages are marshaled deterministically so that stored values
// can be compared byte-for-byte by a property store.
func NewProto[
	T interface {
		proto.Message
		*S
	},
	S any,
]() Marshaler[T] {
	opts := proto.MarshalOptions{Deterministic: true}

	return New(
		func(m T) ([]byte, error) {
			return opts.Marshal(m)
		},
		func(data []byte) (T, error) {
			m := T(new(S))
			return m, proto.Unmarshal(data, m)
		},
	)
}

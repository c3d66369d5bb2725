// Package marshaler converts typed property values to and from the raw bytes
// held by a property store.
package marshaler

// Marshaler converts values of type T to and from their stored form.
//
// A property store treats an empty value as a deletion, so a Marshaler should
// only produce an empty slice for values that are meant to unset a property.
type Marshaler[T any] interface {
	Marshal(T) ([]byte, error)
	Unmarshal([]byte) (T, error)
}

// New returns a [Marshaler] built from a pair of conversion functions.
func New[T any](
	marshal func(T) ([]byte, error),
	unmarshal func([]byte) (T, error),
) Marshaler[T] {
	return funcs[T]{marshal, unmarshal}
}

// funcs is a [Marshaler] implemented by a pair of functions.
type funcs[T any] struct {
	marshal   func(T) ([]byte, error)
	unmarshal func([]byte) (T, error)
}

func (m funcs[T]) Marshal(v T) ([]byte, error) {
	return m.marshal(v)
}

func (m funcs[T]) Unmarshal(data []byte) (T, error) {
	return m.unmarshal(data)
}

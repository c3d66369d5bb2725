package marshaler

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode produces deterministic output, so that equal values always
// marshal to equal bytes and can be compared by a property store.
var cborEncMode cbor.EncMode

var cborDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	cborEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("unable to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	cborDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("unable to create CBOR decoder mode: %v", err))
	}
}

// NewCBOR returns a marshaler that marshals and unmarshals an arbitrary type
// using a canonical CBOR encoding.
func NewCBOR[T any]() Marshaler[T] {
	return New(
		func(v T) ([]byte, error) {
			return cborEncMode.Marshal(v)
		},
		func(data []byte) (T, error) {
			var v T
			return v, cborDecMode.Unmarshal(data, &v)
		},
	)
}

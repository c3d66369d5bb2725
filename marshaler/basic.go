package marshaler

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

var (
	// String marshals and unmarshals the built-in string type by performing a
	// Go type-conversion.
	//
	// The empty string marshals to an empty value, which a property store
	// treats as a deletion.
	String = New(
		func(v string) ([]byte, error) {
			return []byte(v), nil
		},
		func(data []byte) (string, error) {
			return string(data), nil
		},
	)

	// Bool marshals and unmarshals the built-in bool type as a single byte.
	//
	// Unlike [String], the zero value marshals to a non-empty value so that
	// false can be stored.
	Bool = New(
		func(v bool) ([]byte, error) {
			if v {
				return []byte{1}, nil
			}
			return []byte{0}, nil
		},
		func(data []byte) (bool, error) {
			if len(data) != 1 || data[0] > 1 {
				return false, fmt.Errorf("invalid boolean encoding: %x", data)
			}
			return data[0] == 1, nil
		},
	)

	// Int32 marshals and unmarshals "integer" values as 4 big-endian bytes.
	Int32 = New(
		func(v int32) ([]byte, error) {
			return binary.BigEndian.AppendUint32(nil, uint32(v)), nil
		},
		func(data []byte) (int32, error) {
			if len(data) != 4 {
				return 0, fmt.Errorf("invalid integer encoding: expected 4 bytes, got %d", len(data))
			}
			return int32(binary.BigEndian.Uint32(data)), nil
		},
	)

	// Int64 marshals and unmarshals "longinteger" values as 8 big-endian bytes.
	Int64 = New(
		func(v int64) ([]byte, error) {
			return binary.BigEndian.AppendUint64(nil, uint64(v)), nil
		},
		unmarshalInt64,
	)

	// Float64 marshals and unmarshals "double" values as their 8 byte IEEE 754
	// representation.
	Float64 = New(
		func(v float64) ([]byte, error) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("double must be finite, got %v", v)
			}
			return binary.BigEndian.AppendUint64(nil, math.Float64bits(v)), nil
		},
		func(data []byte) (float64, error) {
			n, err := unmarshalInt64(data)
			return math.Float64frombits(uint64(n)), err
		},
	)

	// Time marshals and unmarshals "datetime" values as the number of
	// milliseconds since the Unix epoch.
	Time = New(
		func(v time.Time) ([]byte, error) {
			return binary.BigEndian.AppendUint64(nil, uint64(v.UnixMilli())), nil
		},
		func(data []byte) (time.Time, error) {
			n, err := unmarshalInt64(data)
			return time.UnixMilli(n).UTC(), err
		},
	)
)

func unmarshalInt64(data []byte) (int64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid encoding: expected 8 bytes, got %d", len(data))
	}
	return int64(binary.BigEndian.Uint64(data)), nil
}

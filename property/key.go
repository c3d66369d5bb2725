package property

import (
	"bytes"

	"google.golang.org/protobuf/encoding/protowire"
)

// keyPrefix identifies keys in the backend keyspace that hold properties.
//
// Keys without this prefix, or that do not decode cleanly, belong to some other
// user of a shared keyspace and are never modified.
var keyPrefix = []byte("prop\x00")

const (
	interfaceField protowire.Number = 1
	pathField      protowire.Number = 2
)

// encodeKey returns the backend key for the property at path within the
// interface named iface.
//
// Each component is length-delimited, so no choice of interface name or path
// can produce the key of a different pair.
func encodeKey(iface, path string) []byte {
	k := make([]byte, 0, len(keyPrefix)+len(iface)+len(path)+8)
	k = append(k, keyPrefix...)
	k = protowire.AppendTag(k, interfaceField, protowire.BytesType)
	k = protowire.AppendString(k, iface)
	k = protowire.AppendTag(k, pathField, protowire.BytesType)
	k = protowire.AppendString(k, path)
	return k
}

// decodeKey returns the interface name and path encoded in k.
//
// ok is false if k is not a property key.
func decodeKey(k []byte) (iface, path string, ok bool) {
	if !bytes.HasPrefix(k, keyPrefix) {
		return "", "", false
	}
	k = k[len(keyPrefix):]

	iface, k, ok = consumeString(k, interfaceField)
	if !ok {
		return "", "", false
	}

	path, k, ok = consumeString(k, pathField)
	if !ok || len(k) != 0 {
		return "", "", false
	}

	return iface, path, true
}

func consumeString(k []byte, field protowire.Number) (string, []byte, bool) {
	num, typ, n := protowire.ConsumeTag(k)
	if n < 0 || num != field || typ != protowire.BytesType {
		return "", nil, false
	}
	k = k[n:]

	v, n := protowire.ConsumeBytes(k)
	if n < 0 {
		return "", nil, false
	}

	return string(v), k[n:], true
}

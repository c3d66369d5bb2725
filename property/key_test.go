package property

import (
	"bytes"
	"testing"

	"pgregory.net/rapid"
)

func TestKeyEncoding(t *testing.T) {
	t.Run("it does not produce colliding keys for ambiguous pairs", func(t *testing.T) {
		a := encodeKey("A", "B/C")
		b := encodeKey("A/B", "C")

		if bytes.Equal(a, b) {
			t.Fatal("expected distinct keys")
		}
	})

	t.Run("it rejects keys that are not property keys", func(t *testing.T) {
		cases := [][]byte{
			nil,
			[]byte("unrelated"),
			keyPrefix,
			encodeKey("iface", "/path")[:len(keyPrefix)+3],
			append(encodeKey("iface", "/path"), 0),
		}

		for _, k := range cases {
			if _, _, ok := decodeKey(k); ok {
				t.Errorf("did not expect %q to decode", k)
			}
		}
	})

	t.Run("it round-trips every pair", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			iface := rapid.String().Draw(t, "iface")
			path := rapid.String().Draw(t, "path")

			gotIface, gotPath, ok := decodeKey(encodeKey(iface, path))
			if !ok {
				t.Fatal("expected key to decode")
			}

			if gotIface != iface || gotPath != path {
				t.Fatalf("unexpected pair: got (%q, %q), want (%q, %q)", gotIface, gotPath, iface, path)
			}
		})
	})

	t.Run("it is injective", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			i1 := rapid.String().Draw(t, "iface1")
			p1 := rapid.String().Draw(t, "path1")
			i2 := rapid.String().Draw(t, "iface2")
			p2 := rapid.String().Draw(t, "path2")

			same := i1 == i2 && p1 == p2
			if bytes.Equal(encodeKey(i1, p1), encodeKey(i2, p2)) != same {
				t.Fatalf("collision between (%q, %q) and (%q, %q)", i1, p1, i2, p2)
			}
		})
	})
}

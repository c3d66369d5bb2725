package kv_test

import (
	"bytes"
	"testing"

	"github.com/dogmatiq/propertykit/driver/memory/memorykv"
	. "github.com/dogmatiq/propertykit/kv"
)

func TestWithNamePrefix(t *testing.T) {
	RunTests(t, WithNamePrefix(&memorykv.Store{}, "prefix-"))

	var underlying memorykv.Store

	store := WithNamePrefix(&underlying, "prefix-")

	ks, err := store.Open(t.Context(), "test")
	if err != nil {
		t.Fatal(err)
	}
	defer ks.Close()

	t.Run("it adds the prefix to the name", func(t *testing.T) {
		key := []byte("<key>")
		want := []byte("<value>")

		if err := ks.Set(t.Context(), key, want); err != nil {
			t.Fatal(err)
		}

		u, err := underlying.Open(t.Context(), "prefix-test")
		if err != nil {
			t.Fatal(err)
		}
		defer u.Close()

		got, err := u.Get(t.Context(), key)
		if err != nil {
			t.Fatal(err)
		}

		if !bytes.Equal(got, want) {
			t.Errorf("unexpected value: got %q, want %q", got, want)
		}
	})

	t.Run("it reports the unprefixed name", func(t *testing.T) {
		if got, want := ks.Name(), "test"; got != want {
			t.Errorf("unexpected name: got %q, want %q", got, want)
		}
	})
}

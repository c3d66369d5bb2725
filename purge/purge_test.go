package purge_test

import (
	"errors"
	"testing"

	"github.com/dogmatiq/propertykit/driver/memory/memorykv"
	"github.com/dogmatiq/propertykit/fault"
	"github.com/dogmatiq/propertykit/kv"
	"github.com/dogmatiq/propertykit/property"
	. "github.com/dogmatiq/propertykit/purge"
	"github.com/dogmatiq/propertykit/schema"
	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

func setup(t *testing.T, props ...Key) *property.Store {
	t.Helper()

	s, err := property.Open(t.Context(), &memorykv.Store{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	for _, k := range props {
		if err := s.Store(t.Context(), k.Interface, k.Path, []byte("<value>")); err != nil {
			t.Fatal(err)
		}
	}

	return s
}

func TestList(t *testing.T) {
	t.Parallel()

	t.Run("it returns the keys in order", func(t *testing.T) {
		t.Parallel()

		s := setup(
			t,
			Key{"org.b.Second", "/x"},
			Key{"org.a.First", "/z"},
			Key{"org.a.First", "/a"},
		)

		got, err := List(t.Context(), s, All)
		if err != nil {
			t.Fatal(err)
		}

		want := []Key{
			{"org.a.First", "/a"},
			{"org.a.First", "/z"},
			{"org.b.Second", "/x"},
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatal(diff)
		}

		if got, want := Encode(got), "org.a.First/a;org.a.First/z;org.b.Second/x"; got != want {
			t.Fatalf("unexpected encoding: got %q, want %q", got, want)
		}
	})

	t.Run("it returns no keys when the store is empty", func(t *testing.T) {
		t.Parallel()

		s := setup(t)

		got, err := List(t.Context(), s, All)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Fatalf("unexpected keys: %v", got)
		}

		if got := Encode(got); got != "" {
			t.Fatalf("unexpected encoding: %q", got)
		}
	})

	t.Run("it applies the ownership filters", func(t *testing.T) {
		t.Parallel()

		var r schema.Registry
		if err := r.LoadDir("../schema/testdata"); err != nil {
			t.Fatal(err)
		}

		s := setup(
			t,
			Key{"org.example.Sensors", "/1/name"},
			Key{"org.example.Settings", "/enabled"},
			Key{"org.example.Unknown", "/value"},
		)

		device, err := List(t.Context(), s, DeviceOwned(&r))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]Key{{"org.example.Sensors", "/1/name"}}, device); diff != "" {
			t.Fatal(diff)
		}

		server, err := List(t.Context(), s, ServerOwned(&r))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]Key{{"org.example.Settings", "/enabled"}}, server); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestTracker(t *testing.T) {
	t.Parallel()

	t.Run("it distinguishes keys that concatenate to the same string", func(t *testing.T) {
		t.Parallel()

		var tr Tracker
		if err := tr.Seen("A", "/B/C"); err != nil {
			t.Fatal(err)
		}

		if !tr.HasSeen("A", "/B/C") {
			t.Fatal("expected key to be seen")
		}
		if tr.HasSeen("A/B", "/C") {
			t.Fatal("did not expect overlapping key to be seen")
		}
	})

	t.Run("it counts each property once", func(t *testing.T) {
		t.Parallel()

		var tr Tracker
		for range 3 {
			if err := tr.Seen("org.x.Temp", "/0/value"); err != nil {
				t.Fatal(err)
			}
		}

		if got := tr.Len(); got != 1 {
			t.Fatalf("unexpected length: got %d, want 1", got)
		}

		tr.Reset()

		if got := tr.Len(); got != 0 {
			t.Fatalf("unexpected length after reset: got %d, want 0", got)
		}
		if tr.HasSeen("org.x.Temp", "/0/value") {
			t.Fatal("did not expect key to be seen after reset")
		}
	})

	t.Run("it fails when a bounded tracker is full", func(t *testing.T) {
		t.Parallel()

		tr := NewTracker(1)
		if err := tr.Seen("org.x.Temp", "/0/value"); err != nil {
			t.Fatal(err)
		}

		err := tr.Seen("org.x.Temp", "/1/value")
		if !errors.Is(err, fault.ErrOutOfMemory) {
			t.Fatalf("unexpected error: got %v, want %v", err, fault.ErrOutOfMemory)
		}
	})

	t.Run("it purges the properties that were not seen", func(t *testing.T) {
		t.Parallel()

		s := setup(
			t,
			Key{"org.x.Temp", "/0/value"},
			Key{"org.x.Temp", "/1/value"},
			Key{"org.x.Other", "/value"},
		)

		var tr Tracker
		if err := tr.Seen("org.x.Temp", "/1/value"); err != nil {
			t.Fatal(err)
		}

		n, err := tr.Purge(
			t.Context(),
			s,
			func(iface string) bool { return iface == "org.x.Temp" },
		)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Fatalf("unexpected purge count: got %d, want 1", n)
		}

		got, err := List(t.Context(), s, All)
		if err != nil {
			t.Fatal(err)
		}

		want := []Key{
			{"org.x.Other", "/value"},
			{"org.x.Temp", "/1/value"},
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("it preserves the classification of deletion failures", func(t *testing.T) {
		t.Parallel()

		var in kv.Interceptor
		s, err := property.Open(t.Context(), kv.WithInterceptor(&memorykv.Store{}, &in))
		if err != nil {
			t.Fatal(err)
		}
		defer s.Close()

		for _, p := range []string{"/0/value", "/1/value"} {
			if err := s.Store(t.Context(), "org.x.Temp", p, []byte("<value>")); err != nil {
				t.Fatal(err)
			}
		}

		// Close the store once the first deletion lands, so the second is
		// rejected by the store rather than the backend.
		in.AfterSet(func(_ string, _, v []byte) error {
			if len(v) == 0 {
				s.Close()
			}
			return nil
		})

		var tr Tracker
		n, err := tr.Purge(t.Context(), s, All)
		if !errors.Is(err, property.ErrClosed) {
			t.Fatalf("unexpected error: got %v, want %v", err, property.ErrClosed)
		}
		if got := fault.KindOf(err); got != fault.KindInvalidArgument {
			t.Fatalf("unexpected kind: got %v, want %v", got, fault.KindInvalidArgument)
		}
		if n != 1 {
			t.Fatalf("unexpected purge count: got %d, want 1", n)
		}
	})

	t.Run("it reports backend failures as internal errors", func(t *testing.T) {
		t.Parallel()

		var in kv.Interceptor
		s, err := property.Open(t.Context(), kv.WithInterceptor(&memorykv.Store{}, &in))
		if err != nil {
			t.Fatal(err)
		}
		defer s.Close()

		if err := s.Store(t.Context(), "org.x.Temp", "/value", []byte("<value>")); err != nil {
			t.Fatal(err)
		}

		want := errors.New("<error>")
		in.BeforeSet(func(string, []byte, []byte) error {
			return want
		})

		var tr Tracker
		n, err := tr.Purge(t.Context(), s, All)
		if !errors.Is(err, want) {
			t.Fatalf("unexpected error: got %v, want %v", err, want)
		}
		if got := fault.KindOf(err); got != fault.KindInternal {
			t.Fatalf("unexpected kind: got %v, want %v", got, fault.KindInternal)
		}
		if n != 0 {
			t.Fatalf("unexpected purge count: got %d, want 0", n)
		}
	})

	t.Run("it keeps exactly the seen properties", func(t *testing.T) {
		t.Parallel()

		rapid.Check(t, func(t *rapid.T) {
			keys := rapid.SliceOfNDistinct(
				rapid.Custom(func(t *rapid.T) Key {
					return Key{
						Interface: rapid.StringMatching(`org\.[a-c]\.[A-C]`).Draw(t, "iface"),
						Path:      rapid.StringMatching(`/[a-c]{1,3}`).Draw(t, "path"),
					}
				}),
				1, 10,
				func(k Key) Key { return k },
			).Draw(t, "keys")

			s, err := property.Open(t.Context(), &memorykv.Store{})
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()

			var (
				tr   Tracker
				want []Key
			)

			for _, k := range keys {
				if err := s.Store(t.Context(), k.Interface, k.Path, []byte("<value>")); err != nil {
					t.Fatal(err)
				}

				if rapid.Bool().Draw(t, "seen") {
					if err := tr.Seen(k.Interface, k.Path); err != nil {
						t.Fatal(err)
					}
					want = append(want, k)
				}
			}

			if _, err := tr.Purge(t.Context(), s, All); err != nil {
				t.Fatal(err)
			}

			for _, k := range keys {
				_, err := s.Load(t.Context(), k.Interface, k.Path)
				seen := tr.HasSeen(k.Interface, k.Path)

				if seen && err != nil {
					t.Fatalf("seen property %s was purged: %v", k, err)
				}
				if !seen && !errors.Is(err, fault.ErrNotFound) {
					t.Fatalf("unseen property %s was kept: %v", k, err)
				}
			}

			if tr.Len() != len(want) {
				t.Fatalf("unexpected tracker length: got %d, want %d", tr.Len(), len(want))
			}
		})
	})
}

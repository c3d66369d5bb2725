package list_test

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/dogmatiq/propertykit/fault"
	. "github.com/dogmatiq/propertykit/list"
	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

func TestList(t *testing.T) {
	t.Run("Append", func(t *testing.T) {
		t.Run("it adds items to the tail", func(t *testing.T) {
			var l List

			for _, v := range []string{"a", "b", "c"} {
				if err := l.Append([]byte(v)); err != nil {
					t.Fatal(err)
				}
			}

			got := collect(&l)
			want := []string{"a", "b", "c"}

			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatal(diff)
			}
		})

		t.Run("it fails with out-of-memory when a bounded list is full", func(t *testing.T) {
			l := NewBounded(2)

			if err := l.Append([]byte("a")); err != nil {
				t.Fatal(err)
			}

			if err := l.Append([]byte("b")); err != nil {
				t.Fatal(err)
			}

			err := l.Append([]byte("c"))
			if !errors.Is(err, fault.ErrOutOfMemory) {
				t.Fatalf("unexpected error: got %v, want %v", err, fault.ErrOutOfMemory)
			}

			if diff := cmp.Diff([]string{"a", "b"}, collect(l)); diff != "" {
				t.Fatal(diff)
			}
		})

		t.Run("it does not copy the payload", func(t *testing.T) {
			var l List

			payload := []byte("<value>")
			if err := l.Append(payload); err != nil {
				t.Fatal(err)
			}

			payload[0] = 'X'

			if !l.Find([]byte("Xvalue>")) {
				t.Fatal("expected the list to refer to the caller's memory")
			}
		})
	})

	t.Run("RemoveTail", func(t *testing.T) {
		t.Run("it returns the most recently appended item", func(t *testing.T) {
			var l List

			l.Append([]byte("a"))
			l.Append([]byte("b"))

			item, err := l.RemoveTail()
			if err != nil {
				t.Fatal(err)
			}

			if string(item) != "b" {
				t.Fatalf("unexpected item: got %q, want %q", item, "b")
			}

			if l.Len() != 1 {
				t.Fatalf("unexpected length: got %d, want 1", l.Len())
			}
		})

		t.Run("it returns not-found when the list is empty", func(t *testing.T) {
			var l List

			if _, err := l.RemoveTail(); !errors.Is(err, fault.ErrNotFound) {
				t.Fatalf("unexpected error: got %v, want %v", err, fault.ErrNotFound)
			}
		})
	})

	t.Run("Find", func(t *testing.T) {
		var l List
		l.Append([]byte("abc"))
		l.Append([]byte{})

		cases := []struct {
			Item []byte
			Want bool
		}{
			{[]byte("abc"), true},
			{[]byte("ab"), false},
			{[]byte("abcd"), false},
			{[]byte("abd"), false},
			{nil, true},
		}

		for _, c := range cases {
			if got := l.Find(c.Item); got != c.Want {
				t.Errorf("Find(%q): got %t, want %t", c.Item, got, c.Want)
			}
		}
	})

	t.Run("Destroy", func(t *testing.T) {
		t.Run("it leaves payloads untouched", func(t *testing.T) {
			var l List

			payload := []byte("<value>")
			l.Append(payload)
			l.Destroy()

			if !l.IsEmpty() {
				t.Fatal("expected list to be empty")
			}

			if string(payload) != "<value>" {
				t.Fatalf("payload was modified: %q", payload)
			}
		})
	})

	t.Run("DestroyAndRelease", func(t *testing.T) {
		t.Run("it passes each payload to the release function", func(t *testing.T) {
			var l List
			l.Append([]byte("a"))
			l.Append([]byte("b"))

			var released []string
			l.DestroyAndRelease(func(b []byte) {
				released = append(released, string(b))
			})

			if diff := cmp.Diff([]string{"a", "b"}, released); diff != "" {
				t.Fatal(diff)
			}

			if !l.IsEmpty() {
				t.Fatal("expected list to be empty")
			}
		})

		t.Run("it zeroes payloads when no release function is given", func(t *testing.T) {
			var l List

			payload := []byte("abc")
			l.Append(payload)
			l.DestroyAndRelease(nil)

			if !bytes.Equal(payload, []byte{0, 0, 0}) {
				t.Fatalf("expected payload to be zeroed, got %v", payload)
			}
		})
	})

	t.Run("Iterator", func(t *testing.T) {
		t.Run("it returns not-found when the list is empty", func(t *testing.T) {
			var l List

			if _, err := l.Iterator(); !errors.Is(err, fault.ErrNotFound) {
				t.Fatalf("unexpected error: got %v, want %v", err, fault.ErrNotFound)
			}
		})

		t.Run("it visits each item once without wrapping around", func(t *testing.T) {
			var l List
			l.Append([]byte("a"))
			l.Append([]byte("b"))
			l.Append([]byte("c"))

			it, err := l.Iterator()
			if err != nil {
				t.Fatal(err)
			}

			var got []string
			for {
				got = append(got, string(it.Item()))
				if err := it.Advance(); err != nil {
					if !errors.Is(err, fault.ErrNotFound) {
						t.Fatal(err)
					}
					break
				}
			}

			if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
				t.Fatal(diff)
			}

			if it.HasNext() {
				t.Fatal("did not expect the iterator to have another item")
			}

			if string(it.Item()) != "c" {
				t.Fatalf("iterator moved past the tail: %q", it.Item())
			}
		})
	})

	t.Run("property-based", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			limit := rapid.IntRange(1, 16).Draw(t, "limit")
			l := NewBounded(limit)

			var model [][]byte

			t.Repeat(
				map[string]func(*rapid.T){
					"Append": func(t *rapid.T) {
						item := rapid.SliceOfN(rapid.Byte(), 0, 8).Draw(t, "item")
						err := l.Append(item)

						if len(model) == limit {
							if !errors.Is(err, fault.ErrOutOfMemory) {
								t.Fatalf("expected out-of-memory, got %v", err)
							}
							return
						}

						if err != nil {
							t.Fatal(err)
						}
						model = append(model, item)
					},
					"RemoveTail": func(t *rapid.T) {
						item, err := l.RemoveTail()

						if len(model) == 0 {
							if !errors.Is(err, fault.ErrNotFound) {
								t.Fatalf("expected not-found, got %v", err)
							}
							return
						}

						if err != nil {
							t.Fatal(err)
						}

						want := model[len(model)-1]
						model = model[:len(model)-1]

						if !bytes.Equal(item, want) {
							t.Fatalf("unexpected item: got %v, want %v", item, want)
						}
					},
					"Find": func(t *rapid.T) {
						item := rapid.SliceOfN(rapid.Byte(), 0, 8).Draw(t, "item")
						want := slices.ContainsFunc(model, func(x []byte) bool {
							return bytes.Equal(x, item)
						})

						if got := l.Find(item); got != want {
							t.Fatalf("unexpected result for %v: got %t, want %t", item, got, want)
						}
					},
					"": func(t *rapid.T) {
						if l.Len() != len(model) {
							t.Fatalf("unexpected length: got %d, want %d", l.Len(), len(model))
						}
					},
				},
			)
		})
	})
}

func collect(l *List) []string {
	var items []string
	for item := range l.All() {
		items = append(items, string(item))
	}
	return items
}

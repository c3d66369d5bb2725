package set_test

import (
	"errors"
	"testing"

	"github.com/dogmatiq/propertykit/fault"
	. "github.com/dogmatiq/propertykit/set"
	"pgregory.net/rapid"
)

func TestSet(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		t.Run("it does not add byte-identical elements twice", func(t *testing.T) {
			var s Set

			if err := s.Add([]byte{0x01, 0x02}); err != nil {
				t.Fatal(err)
			}

			if err := s.Add([]byte{0x01, 0x02}); err != nil {
				t.Fatal(err)
			}

			if s.Len() != 1 {
				t.Fatalf("unexpected length: got %d, want 1", s.Len())
			}
		})

		t.Run("it adds elements that differ by a single byte", func(t *testing.T) {
			var s Set

			if err := s.Add([]byte{0x01, 0x02}); err != nil {
				t.Fatal(err)
			}

			if err := s.Add([]byte{0x01, 0x03}); err != nil {
				t.Fatal(err)
			}

			if s.Len() != 2 {
				t.Fatalf("unexpected length: got %d, want 2", s.Len())
			}
		})

		t.Run("it treats elements of different lengths as distinct", func(t *testing.T) {
			var s Set

			s.Add([]byte("ab"))
			s.Add([]byte("abc"))

			if s.Len() != 2 {
				t.Fatalf("unexpected length: got %d, want 2", s.Len())
			}
		})

		t.Run("it succeeds without mutation when a full set already has the element", func(t *testing.T) {
			s := NewBounded(1)

			if err := s.Add([]byte("a")); err != nil {
				t.Fatal(err)
			}

			if err := s.Add([]byte("a")); err != nil {
				t.Fatal(err)
			}

			if err := s.Add([]byte("b")); !errors.Is(err, fault.ErrOutOfMemory) {
				t.Fatalf("unexpected error: got %v, want %v", err, fault.ErrOutOfMemory)
			}
		})
	})

	t.Run("TryAdd", func(t *testing.T) {
		var s Set

		added, err := s.TryAdd([]byte("a"))
		if err != nil {
			t.Fatal(err)
		}
		if !added {
			t.Fatal("expected the element to be added")
		}

		added, err = s.TryAdd([]byte("a"))
		if err != nil {
			t.Fatal(err)
		}
		if added {
			t.Fatal("did not expect the element to be added again")
		}
	})

	t.Run("Pop", func(t *testing.T) {
		t.Run("it returns the most recently added element", func(t *testing.T) {
			var s Set
			s.Add([]byte("a"))
			s.Add([]byte("b"))

			v, err := s.Pop()
			if err != nil {
				t.Fatal(err)
			}

			if string(v) != "b" {
				t.Fatalf("unexpected element: got %q, want %q", v, "b")
			}

			if s.Has([]byte("b")) {
				t.Fatal("did not expect the popped element to remain a member")
			}
		})

		t.Run("it returns not-found when the set is empty", func(t *testing.T) {
			var s Set

			if _, err := s.Pop(); !errors.Is(err, fault.ErrNotFound) {
				t.Fatalf("unexpected error: got %v, want %v", err, fault.ErrNotFound)
			}
		})
	})

	t.Run("DestroyAndRelease", func(t *testing.T) {
		var s Set
		s.Add([]byte("a"))
		s.Add([]byte("b"))

		n := 0
		s.DestroyAndRelease(func([]byte) { n++ })

		if n != 2 {
			t.Fatalf("unexpected number of released elements: got %d, want 2", n)
		}

		if !s.IsEmpty() {
			t.Fatal("expected set to be empty")
		}
	})

	t.Run("property-based", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			var s Set
			model := map[string]struct{}{}

			values := rapid.SliceOfN(rapid.Byte(), 0, 3)

			t.Repeat(
				map[string]func(*rapid.T){
					"Add": func(t *rapid.T) {
						v := values.Draw(t, "value")
						if err := s.Add(v); err != nil {
							t.Fatal(err)
						}
						model[string(v)] = struct{}{}
					},
					"Pop": func(t *rapid.T) {
						v, err := s.Pop()
						if len(model) == 0 {
							if !errors.Is(err, fault.ErrNotFound) {
								t.Fatalf("expected not-found, got %v", err)
							}
							return
						}

						if err != nil {
							t.Fatal(err)
						}

						if _, ok := model[string(v)]; !ok {
							t.Fatalf("popped a value that is not a member: %v", v)
						}
						delete(model, string(v))
					},
					"": func(t *rapid.T) {
						if s.Len() != len(model) {
							t.Fatalf("unexpected length: got %d, want %d", s.Len(), len(model))
						}

						for v := range s.All() {
							if _, ok := model[string(v)]; !ok {
								t.Fatalf("unexpected member: %v", v)
							}
						}
					},
				},
			)
		})
	})
}

package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dogmatiq/propertykit/internal/x/xtesting"
	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

// RunTests runs tests that confirm a [Store] implementation behaves correctly.
func RunTests(
	t *testing.T,
	store Store,
) {
	setup := func(t *testing.T) Keyspace {
		return openKeyspace(t, store, xtesting.SequentialName("keyspace"))
	}

	t.Run("Store", func(t *testing.T) {
		t.Parallel()

		t.Run("it shares pairs between handles to the same keyspace", func(t *testing.T) {
			t.Parallel()

			name := xtesting.SequentialName("keyspace")
			ks1 := openKeyspace(t, store, name)
			ks2 := openKeyspace(t, store, name)

			mustSet(t, ks1, "<key>", "<value>")
			expectValue(t, ks2, "<key>", "<value>")
		})

		t.Run("it isolates keyspaces with similar names", func(t *testing.T) {
			t.Parallel()

			base := xtesting.SequentialName("keyspace")
			names := []string{
				base,
				base + "x",
				base + "/nested",
				base + " spaced",
			}

			var keyspaces []Keyspace
			for _, n := range names {
				ks := openKeyspace(t, store, n)
				mustSet(t, ks, "<key>", n)
				keyspaces = append(keyspaces, ks)
			}

			for i, ks := range keyspaces {
				want := map[string]string{"<key>": names[i]}
				if diff := cmp.Diff(want, contents(t, ks)); diff != "" {
					t.Fatalf("keyspace %q leaked pairs (-want +got):\n%s", names[i], diff)
				}
			}
		})
	})

	t.Run("Keyspace", func(t *testing.T) {
		t.Parallel()

		t.Run("it stores keys and values of any shape", func(t *testing.T) {
			t.Parallel()

			cases := []struct {
				Desc  string
				Key   string
				Value string
			}{
				{"printable key", "<key>", "<value>"},
				{"key containing NUL bytes", "\x00a\x00", "<value>"},
				{"key containing high bytes", "\xff\xfe", "<value>"},
				{"single byte value of zero", "<zero>", "\x00"},
				{"long key", string(bytes.Repeat([]byte("k"), 256)), "<value>"},
				{"large value", "<large>", string(bytes.Repeat([]byte{0xa5}, 64*1024))},
			}

			for _, c := range cases {
				t.Run(c.Desc, func(t *testing.T) {
					t.Parallel()

					ks := setup(t)
					mustSet(t, ks, c.Key, c.Value)
					expectValue(t, ks, c.Key, c.Value)
					expectHas(t, ks, c.Key, true)
				})
			}
		})

		t.Run("it distinguishes keys that are prefixes of one another", func(t *testing.T) {
			t.Parallel()

			ks := setup(t)
			mustSet(t, ks, "a", "1")
			mustSet(t, ks, "ab", "2")
			mustSet(t, ks, "a\x00", "3")

			want := map[string]string{"a": "1", "ab": "2", "a\x00": "3"}
			if diff := cmp.Diff(want, contents(t, ks)); diff != "" {
				t.Fatal(diff)
			}

			mustSet(t, ks, "a", "")
			delete(want, "a")

			if diff := cmp.Diff(want, contents(t, ks)); diff != "" {
				t.Fatal(diff)
			}
		})

		t.Run("it reports absent keys as empty values", func(t *testing.T) {
			t.Parallel()

			ks := setup(t)
			expectValue(t, ks, "<missing>", "")
			expectHas(t, ks, "<missing>", false)
		})

		t.Run("it replaces the value of an existing key", func(t *testing.T) {
			t.Parallel()

			ks := setup(t)
			mustSet(t, ks, "<key>", "<value>")
			mustSet(t, ks, "<key>", "<updated>")
			expectValue(t, ks, "<key>", "<updated>")
		})

		t.Run("it deletes a key when given an empty value", func(t *testing.T) {
			t.Parallel()

			for _, v := range [][]byte{nil, {}} {
				ks := setup(t)
				mustSet(t, ks, "<key>", "<value>")

				if err := ks.Set(t.Context(), []byte("<key>"), v); err != nil {
					t.Fatal(err)
				}

				expectValue(t, ks, "<key>", "")
				expectHas(t, ks, "<key>", false)
			}
		})

		t.Run("it allows deletion of a key that does not exist", func(t *testing.T) {
			t.Parallel()

			ks := setup(t)
			mustSet(t, ks, "<missing>", "")
			expectHas(t, ks, "<missing>", false)
		})

		t.Run("it never shares memory with the caller", func(t *testing.T) {
			t.Parallel()

			ks := setup(t)

			k := []byte("<key>")
			v := []byte("<value>")
			if err := ks.Set(t.Context(), k, v); err != nil {
				t.Fatal(err)
			}
			k[0], v[0] = 'X', 'X'

			got, err := ks.Get(t.Context(), []byte("<key>"))
			if err != nil {
				t.Fatal(err)
			}
			got[0] = 'Y'

			if err := ks.Range(
				t.Context(),
				func(_ context.Context, k, v []byte) (bool, error) {
					k[0], v[0] = 'Z', 'Z'
					return true, nil
				},
			); err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(
				map[string]string{"<key>": "<value>"},
				contents(t, ks),
			); diff != "" {
				t.Fatal(diff)
			}
		})

		t.Run("Range", func(t *testing.T) {
			t.Parallel()

			t.Run("it visits every pair exactly once", func(t *testing.T) {
				t.Parallel()

				ks := setup(t)
				want := map[string]string{}

				for i := range 100 {
					k := fmt.Sprintf("<key-%d>", i)
					v := fmt.Sprintf("<value-%d>", i)
					mustSet(t, ks, k, v)
					want[k] = v
				}

				if diff := cmp.Diff(want, contents(t, ks)); diff != "" {
					t.Fatal(diff)
				}
			})

			t.Run("it stops when the function returns false", func(t *testing.T) {
				t.Parallel()

				ks := setup(t)
				mustSet(t, ks, "<key-1>", "<value>")
				mustSet(t, ks, "<key-2>", "<value>")

				calls := 0
				if err := ks.Range(
					t.Context(),
					func(context.Context, []byte, []byte) (bool, error) {
						calls++
						return false, nil
					},
				); err != nil {
					t.Fatal(err)
				}

				if calls != 1 {
					t.Fatalf("unexpected number of calls: got %d, want 1", calls)
				}
			})

			t.Run("it returns the error produced by the function", func(t *testing.T) {
				t.Parallel()

				ks := setup(t)
				mustSet(t, ks, "<key>", "<value>")

				want := errors.New("<error>")
				err := ks.Range(
					t.Context(),
					func(context.Context, []byte, []byte) (bool, error) {
						return true, want
					},
				)

				if !errors.Is(err, want) {
					t.Fatalf("unexpected error: got %v, want %v", err, want)
				}
			})

			t.Run("it allows the keyspace to be used by the function", func(t *testing.T) {
				t.Parallel()

				ks := setup(t)
				mustSet(t, ks, "<key>", "<value>")

				if err := ks.Range(
					t.Context(),
					func(ctx context.Context, k, v []byte) (bool, error) {
						got, err := ks.Get(ctx, k)
						if err != nil {
							return false, err
						}
						if !bytes.Equal(got, v) {
							return false, fmt.Errorf("unexpected value: got %q, want %q", got, v)
						}

						if ok, err := ks.Has(ctx, k); err != nil || !ok {
							return false, fmt.Errorf("expected key to exist (%v)", err)
						}

						return false, ks.Set(ctx, k, []byte("<updated>"))
					},
				); err != nil {
					t.Fatal(err)
				}

				expectValue(t, ks, "<key>", "<updated>")
			})
		})

		t.Run("EraseAll", func(t *testing.T) {
			t.Parallel()

			t.Run("it removes every pair from the keyspace only", func(t *testing.T) {
				t.Parallel()

				ks := setup(t)
				other := setup(t)

				for i := range 10 {
					mustSet(t, ks, fmt.Sprintf("<key-%d>", i), "<value>")
				}
				mustSet(t, other, "<key-0>", "<other>")

				if err := ks.EraseAll(t.Context()); err != nil {
					t.Fatal(err)
				}

				if n := len(contents(t, ks)); n != 0 {
					t.Fatalf("expected keyspace to be empty, %d pair(s) remain", n)
				}
				expectValue(t, other, "<key-0>", "<other>")
			})

			t.Run("it succeeds when the keyspace is empty", func(t *testing.T) {
				t.Parallel()

				ks := setup(t)
				if err := ks.EraseAll(t.Context()); err != nil {
					t.Fatal(err)
				}
			})

			t.Run("it leaves the keyspace usable", func(t *testing.T) {
				t.Parallel()

				ks := setup(t)
				mustSet(t, ks, "<key>", "<value>")

				if err := ks.EraseAll(t.Context()); err != nil {
					t.Fatal(err)
				}

				mustSet(t, ks, "<key>", "<updated>")
				expectValue(t, ks, "<key>", "<updated>")
			})
		})
	})

	t.Run("it behaves like a map", func(t *testing.T) {
		t.Parallel()

		rapid.Check(t, func(t *rapid.T) {
			ks, err := store.Open(t.Context(), xtesting.SequentialName("keyspace"))
			if err != nil {
				t.Fatal(err)
			}
			defer ks.Close()

			// A small alphabet makes collisions and shared prefixes likely.
			key := rapid.Custom(func(t *rapid.T) string {
				return string(rapid.SliceOfN(rapid.ByteRange(0, 3), 1, 4).Draw(t, "key"))
			})
			value := rapid.SliceOfN(rapid.Byte(), 1, 32)

			model := map[string]string{}

			t.Repeat(
				map[string]func(*rapid.T){
					"Set": func(t *rapid.T) {
						k, v := key.Draw(t, "k"), value.Draw(t, "v")
						if err := ks.Set(t.Context(), []byte(k), v); err != nil {
							t.Fatal(err)
						}
						model[k] = string(v)
					},
					"Delete": func(t *rapid.T) {
						k := key.Draw(t, "k")
						if err := ks.Set(t.Context(), []byte(k), nil); err != nil {
							t.Fatal(err)
						}
						delete(model, k)
					},
					"Get": func(t *rapid.T) {
						k := key.Draw(t, "k")

						v, err := ks.Get(t.Context(), []byte(k))
						if err != nil {
							t.Fatal(err)
						}
						if string(v) != model[k] {
							t.Fatalf("unexpected value for %q: got %q, want %q", k, v, model[k])
						}

						ok, err := ks.Has(t.Context(), []byte(k))
						if err != nil {
							t.Fatal(err)
						}
						if _, want := model[k]; ok != want {
							t.Fatalf("unexpected presence of %q: got %t, want %t", k, ok, want)
						}
					},
					"EraseAll": func(t *rapid.T) {
						if rapid.IntRange(0, 9).Draw(t, "roll") != 0 {
							t.Skip("erasure is kept rare so the keyspace can fill up")
						}
						if err := ks.EraseAll(t.Context()); err != nil {
							t.Fatal(err)
						}
						clear(model)
					},
					"": func(t *rapid.T) {
						got := map[string]string{}
						if err := ks.Range(
							t.Context(),
							func(_ context.Context, k, v []byte) (bool, error) {
								if _, ok := got[string(k)]; ok {
									return false, fmt.Errorf("key %q visited twice", k)
								}
								got[string(k)] = string(v)
								return true, nil
							},
						); err != nil {
							t.Fatal(err)
						}

						if diff := cmp.Diff(model, got); diff != "" {
							t.Fatalf("keyspace diverged from model (-want +got):\n%s", diff)
						}
					},
				},
			)
		})
	})
}

func openKeyspace(t *testing.T, store Store, name string) Keyspace {
	t.Helper()

	ks, err := store.Open(t.Context(), name)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := ks.Close(); err != nil {
			t.Error(err)
		}
	})

	if ks.Name() != name {
		t.Fatalf("unexpected keyspace name: got %q, want %q", ks.Name(), name)
	}

	return ks
}

func mustSet(t *testing.T, ks Keyspace, k, v string) {
	t.Helper()

	if err := ks.Set(t.Context(), []byte(k), []byte(v)); err != nil {
		t.Fatal(err)
	}
}

func expectValue(t *testing.T, ks Keyspace, k, want string) {
	t.Helper()

	got, err := ks.Get(t.Context(), []byte(k))
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, []byte(want)) {
		t.Fatalf("unexpected value for %q: got %q, want %q", k, got, want)
	}
}

func expectHas(t *testing.T, ks Keyspace, k string, want bool) {
	t.Helper()

	got, err := ks.Has(t.Context(), []byte(k))
	if err != nil {
		t.Fatal(err)
	}

	if got != want {
		t.Fatalf("unexpected presence of %q: got %t, want %t", k, got, want)
	}
}

// contents returns every pair in ks.
func contents(t *testing.T, ks Keyspace) map[string]string {
	t.Helper()

	m := map[string]string{}
	if err := ks.Range(
		t.Context(),
		func(_ context.Context, k, v []byte) (bool, error) {
			m[string(k)] = string(v)
			return true, nil
		},
	); err != nil {
		t.Fatal(err)
	}

	return m
}

package kv

import (
	"context"
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/dogmatiq/propertykit/internal/x/xtesting"
)

// RunBenchmarks runs benchmarks against a [Store] implementation.
func RunBenchmarks(
	b *testing.B,
	store Store,
) {
	b.Run("Store", func(b *testing.B) {
		b.Run("Open (existing keyspace)", func(b *testing.B) {
			name := xtesting.SequentialName("keyspace")
			benchmarkOpen(b, store, func() string { return name })
		})

		b.Run("Open (new keyspace)", func(b *testing.B) {
			benchmarkOpen(b, store, func() string {
				return xtesting.SequentialName("keyspace")
			})
		})
	})

	b.Run("Keyspace", func(b *testing.B) {
		// Values are sized like a double property and a small binary blob.
		for _, size := range []int{8, 1024} {
			b.Run(fmt.Sprintf("%dB value", size), func(b *testing.B) {
				for _, op := range keyspaceOperations {
					b.Run(op.Name, func(b *testing.B) {
						var k, v []byte

						benchmarkKeyspace(
							b,
							store,
							nil,
							func(ctx context.Context, ks Keyspace) error {
								k, v = randomBytes(32), randomBytes(size)
								if op.Existing {
									return ks.Set(ctx, k, v)
								}
								return nil
							},
							func(ctx context.Context, ks Keyspace) error {
								return op.Run(ctx, ks, k, v)
							},
						)
					})
				}
			})
		}

		b.Run("Range (3k pairs)", func(b *testing.B) {
			benchmarkKeyspace(
				b,
				store,
				func(ctx context.Context, ks Keyspace) error {
					return fill(ctx, ks, 3000)
				},
				nil,
				func(ctx context.Context, ks Keyspace) error {
					return ks.Range(
						ctx,
						func(context.Context, []byte, []byte) (bool, error) {
							return true, nil
						},
					)
				},
			)
		})

		b.Run("EraseAll (100 pairs)", func(b *testing.B) {
			benchmarkKeyspace(
				b,
				store,
				nil,
				func(ctx context.Context, ks Keyspace) error {
					return fill(ctx, ks, 100)
				},
				func(ctx context.Context, ks Keyspace) error {
					return ks.EraseAll(ctx)
				},
			)
		})
	})
}

// keyspaceOperations are the single-key operations measured by
// [RunBenchmarks].
var keyspaceOperations = []struct {
	Name     string
	Existing bool
	Run      func(ctx context.Context, ks Keyspace, k, v []byte) error
}{
	{
		Name: "Get (missing key)",
		Run: func(ctx context.Context, ks Keyspace, k, _ []byte) error {
			_, err := ks.Get(ctx, k)
			return err
		},
	},
	{
		Name:     "Get (existing key)",
		Existing: true,
		Run: func(ctx context.Context, ks Keyspace, k, _ []byte) error {
			_, err := ks.Get(ctx, k)
			return err
		},
	},
	{
		Name:     "Has (existing key)",
		Existing: true,
		Run: func(ctx context.Context, ks Keyspace, k, _ []byte) error {
			_, err := ks.Has(ctx, k)
			return err
		},
	},
	{
		Name: "Set (new key)",
		Run: func(ctx context.Context, ks Keyspace, k, v []byte) error {
			return ks.Set(ctx, k, v)
		},
	},
	{
		Name:     "Set (replace)",
		Existing: true,
		Run: func(ctx context.Context, ks Keyspace, k, v []byte) error {
			return ks.Set(ctx, k, v)
		},
	},
	{
		Name:     "Set (delete)",
		Existing: true,
		Run: func(ctx context.Context, ks Keyspace, k, _ []byte) error {
			return ks.Set(ctx, k, nil)
		},
	},
}

func benchmarkOpen(b *testing.B, store Store, name func() string) {
	var ks Keyspace

	xtesting.Benchmark(
		b,
		nil,
		nil,
		func(ctx context.Context) (err error) {
			ks, err = store.Open(ctx, name())
			return err
		},
		func(context.Context) error {
			return ks.Close()
		},
	)
}

// benchmarkKeyspace measures fn against a freshly opened keyspace. setup runs
// once and pre runs before each iteration; either may be nil.
func benchmarkKeyspace(
	b *testing.B,
	store Store,
	setup func(context.Context, Keyspace) error,
	pre func(context.Context, Keyspace) error,
	fn func(context.Context, Keyspace) error,
) {
	var ks Keyspace

	xtesting.Benchmark(
		b,
		func(ctx context.Context) (err error) {
			ks, err = store.Open(ctx, xtesting.SequentialName("keyspace"))
			if err != nil {
				return err
			}
			b.Cleanup(func() { ks.Close() })

			if setup != nil {
				return setup(ctx, ks)
			}
			return nil
		},
		func(ctx context.Context) error {
			if pre != nil {
				return pre(ctx, ks)
			}
			return nil
		},
		func(ctx context.Context) error {
			return fn(ctx, ks)
		},
		nil,
	)
}

// fill sets n pairs in ks.
func fill(ctx context.Context, ks Keyspace, n int) error {
	for i := range n {
		k := fmt.Appendf(nil, "<key-%d>", i)
		if err := ks.Set(ctx, k, []byte("<value>")); err != nil {
			return err
		}
	}
	return nil
}

func randomBytes(n int) []byte {
	data := make([]byte, n)
	rand.Read(data)
	return data
}

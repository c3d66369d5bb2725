package xtesting

import (
	"context"
	"testing"
	"time"
)

// phaseTimeout bounds each untimed phase of a benchmark.
const phaseTimeout = 30 * time.Second

// Benchmark benchmarks fn.
//
// setup is called once before the first iteration. pre and post are called
// before and after every iteration. Any of them may be nil. Only the time spent
// in fn is measured.
func Benchmark(
	b *testing.B,
	setup func(context.Context) error,
	pre func(context.Context) error,
	fn func(context.Context) error,
	post func(context.Context) error,
) {
	ctx := b.Context()

	phase(ctx, b, "setup", setup)

	for b.Loop() {
		b.StopTimer()
		phase(ctx, b, "pre", pre)
		b.StartTimer()

		err := fn(ctx)

		b.StopTimer()
		if err != nil {
			b.Fatal(err)
		}
		phase(ctx, b, "post", post)
		b.StartTimer()
	}
}

// phase runs an untimed step of a benchmark with its own deadline.
func phase(ctx context.Context, b *testing.B, name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, phaseTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		b.Fatalf("%s: %s", name, err)
	}
}

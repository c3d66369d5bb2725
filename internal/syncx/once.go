// Package syncx contains synchronization primitives.
package syncx

import (
	"context"
	"sync"
	"sync/atomic"
)

// SucceedOnce runs a one-time setup step, such as creating the DynamoDB table
// or S3 bucket that backs a driver, until the step first succeeds.
//
// Unlike [sync.Once] a failed attempt is not remembered, so the next call to
// [SucceedOnce.Do] tries again.
type SucceedOnce struct {
	done atomic.Bool
	m    sync.Mutex
}

// Do calls fn unless an earlier call has already succeeded. Concurrent callers
// wait for the attempt in progress.
func (o *SucceedOnce) Do(
	ctx context.Context,
	fn func(context.Context) error,
) error {
	if o.done.Load() {
		return nil
	}

	o.m.Lock()
	defer o.m.Unlock()

	if o.done.Load() {
		return nil
	}

	if err := fn(ctx); err != nil {
		return err
	}

	o.done.Store(true)

	return nil
}

package batch

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// runTask executes op for a single item, measuring wall-clock duration with
// the monotonic clock and capturing any failure. A panic inside op is
// recovered and converted into a failed outcome; nothing escapes the runner.
func runTask[R any](ctx context.Context, item Item, op Operation[R]) (out outcome[R]) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = outcome[R]{err: fmt.Errorf("panic: %v", r), elapsed: time.Since(start)}
		}
	}()
	val, err := op(ctx, item)
	return outcome[R]{value: val, err: err, elapsed: time.Since(start)}
}

// ErrTimeout marks items failed by WithTimeout.
var ErrTimeout = errors.New("operation timed out")

// WithTimeout wraps op so that any single invocation taking longer than d
// settles as a failure instead of holding its slot forever. The abandoned
// invocation keeps running on its own goroutine; its result is discarded.
func WithTimeout[R any](op Operation[R], d time.Duration) Operation[R] {
	return func(ctx context.Context, item Item) (R, error) {
		type settled struct {
			value R
			err   error
		}
		done := make(chan settled, 1)
		go func() {
			out := runTask(ctx, item, op)
			done <- settled{value: out.value, err: out.err}
		}()
		timer := time.NewTimer(d)
		defer timer.Stop()
		var zero R
		select {
		case s := <-done:
			return s.value, s.err
		case <-timer.C:
			return zero, fmt.Errorf("%w after %s: %s", ErrTimeout, d, item.Path)
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

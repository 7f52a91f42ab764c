package retry

import (
	"context"
	"time"
)

const (
	// DefaultAttempts is the total number of invocations, first try included.
	DefaultAttempts = 3
	// DefaultDelay is the fixed wait between attempts.
	DefaultDelay = 2 * time.Second
)

// Do invokes op, retrying with a fixed delay while retryIf matches the error,
// up to attempts invocations total. The cap is always enforced: a persistently
// failing op yields its last error rather than looping forever. Errors that
// retryIf rejects propagate unchanged after the first occurrence. A nil
// retryIf disables retries.
func Do(ctx context.Context, attempts int, delay time.Duration, retryIf func(error) bool, op func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		if err = op(ctx); err == nil {
			return nil
		}
		if retryIf == nil || !retryIf(err) {
			return err
		}
	}
	return err
}

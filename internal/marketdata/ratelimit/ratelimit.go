package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing between upstream requests.
const DefaultInterval = 2 * time.Second

// Limiter enforces a minimum interval between granted acquisitions. The grant
// time is reserved under the lock, so concurrent callers can never both observe
// a stale last-grant time and proceed too soon; each caller then sleeps until
// its reserved slot. No fairness between waiters is guaranteed.
type Limiter struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// New returns a Limiter with the given minimum interval. A non-positive
// interval disables the gate.
func New(interval time.Duration) *Limiter {
	return &Limiter{interval: interval}
}

// Acquire returns once at least the configured interval has elapsed since the
// previous grant, delaying the caller if necessary. Cancellation aborts the
// wait with ctx.Err(); the reservation stands either way, so upstream spacing
// is preserved even across aborted waits.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.interval <= 0 {
		return ctx.Err()
	}

	l.mu.Lock()
	now := time.Now()
	grant := l.last.Add(l.interval)
	if grant.Before(now) {
		grant = now
	}
	l.last = grant
	l.mu.Unlock()

	wait := time.Until(grant)
	if wait <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

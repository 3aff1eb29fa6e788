package crawler

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is the politeness interval between consecutive fetches.
const DefaultDelay = 1 * time.Second

// Throttle spaces out fetches so that no two start closer than the interval.
// One Throttle is shared by every worker of a session, which keeps the
// spacing global rather than per worker.
//
// Design decision: We hand out time slots under a mutex instead of sleeping
// after each fetch because:
//  1. The first fetch of a session does not wait
//  2. Workers queue fairly in slot order
//  3. Cancellation only needs to abort the timer, not release a lock
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewThrottle creates a Throttle with the given interval.
// A non-positive interval disables waiting.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Wait blocks until the caller may issue its next fetch or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.interval <= 0 {
		return ctx.Err()
	}

	t.mu.Lock()
	now := time.Now()
	slot := t.next
	if slot.Before(now) {
		slot = now
	}
	t.next = slot.Add(t.interval)
	t.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Interval returns the configured spacing.
func (t *Throttle) Interval() time.Duration {
	if t == nil {
		return 0
	}
	return t.interval
}

package crawler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// TestThrottleWait tests fetch spacing.
func TestThrottleWait(t *testing.T) {
	t.Parallel()

	t.Run("first wait does not block", func(t *testing.T) {
		t.Parallel()

		th := NewThrottle(time.Hour)
		start := time.Now()
		if err := th.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if time.Since(start) > 100*time.Millisecond {
			t.Error("first wait should return immediately")
		}
	})

	t.Run("consecutive waits are spaced", func(t *testing.T) {
		t.Parallel()

		interval := 30 * time.Millisecond
		th := NewThrottle(interval)
		start := time.Now()
		for range 3 {
			if err := th.Wait(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if elapsed := time.Since(start); elapsed < 2*interval {
			t.Errorf("expected at least %v between three fetches, got %v", 2*interval, elapsed)
		}
	})

	t.Run("spacing is shared between goroutines", func(t *testing.T) {
		t.Parallel()

		interval := 20 * time.Millisecond
		th := NewThrottle(interval)
		start := time.Now()

		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = th.Wait(context.Background())
			}()
		}
		wg.Wait()

		if elapsed := time.Since(start); elapsed < 3*interval {
			t.Errorf("expected at least %v for four shared slots, got %v", 3*interval, elapsed)
		}
	})

	t.Run("cancellation aborts the wait", func(t *testing.T) {
		t.Parallel()

		th := NewThrottle(time.Hour)
		_ = th.Wait(context.Background())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := th.Wait(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("zero interval and nil throttle never block", func(t *testing.T) {
		t.Parallel()

		var nilThrottle *Throttle
		if err := nilThrottle.Wait(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if nilThrottle.Interval() != 0 {
			t.Error("nil throttle should report zero interval")
		}

		th := NewThrottle(0)
		for range 100 {
			if err := th.Wait(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
	})
}

package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

// newTestLimiter returns a limiter with a controllable clock.
func newTestLimiter(start time.Time) (*Limiter, *time.Time) {
	now := start
	l := New()
	l.now = func() time.Time { return now }
	return l, &now
}

func TestCheck(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	window := 15 * time.Minute

	t.Run("allows up to the limit then denies", func(t *testing.T) {
		l, _ := newTestLimiter(start)

		for i := 0; i < 5; i++ {
			res := l.Check("1.2.3.4", 5, window)
			if !res.Allowed {
				t.Fatalf("request %d: expected allowed", i+1)
			}
			if want := 5 - (i + 1); res.Remaining != want {
				t.Errorf("request %d: remaining = %d, want %d", i+1, res.Remaining, want)
			}
		}

		res := l.Check("1.2.3.4", 5, window)
		if res.Allowed {
			t.Error("6th request: expected denied")
		}
		if res.Remaining != 0 {
			t.Errorf("6th request: remaining = %d, want 0", res.Remaining)
		}
		if want := start.Add(window); !res.ResetTime.Equal(want) {
			t.Errorf("6th request: reset time = %v, want %v", res.ResetTime, want)
		}
	})

	t.Run("fresh window after reset time", func(t *testing.T) {
		l, now := newTestLimiter(start)

		for i := 0; i < 6; i++ {
			l.Check("1.2.3.4", 5, window)
		}

		*now = start.Add(window) // exactly at the boundary
		res := l.Check("1.2.3.4", 5, window)
		if !res.Allowed {
			t.Fatal("expected fresh window after reset")
		}
		if res.Remaining != 4 {
			t.Errorf("remaining = %d, want 4", res.Remaining)
		}
		if want := now.Add(window); !res.ResetTime.Equal(want) {
			t.Errorf("reset time = %v, want %v", res.ResetTime, want)
		}
	})

	t.Run("identifiers are independent", func(t *testing.T) {
		l, _ := newTestLimiter(start)

		for i := 0; i < 5; i++ {
			l.Check("1.2.3.4", 5, window)
		}
		if res := l.Check("1.2.3.4", 5, window); res.Allowed {
			t.Error("expected first identifier exhausted")
		}
		if res := l.Check("5.6.7.8", 5, window); !res.Allowed {
			t.Error("expected second identifier untouched")
		}
	})

	t.Run("remaining never increases inside a window", func(t *testing.T) {
		l, now := newTestLimiter(start)

		prev := 5
		for i := 0; i < 10; i++ {
			*now = now.Add(time.Second)
			res := l.Check("1.2.3.4", 5, window)
			if res.Remaining > prev {
				t.Fatalf("remaining increased from %d to %d", prev, res.Remaining)
			}
			if res.Remaining < 0 {
				t.Fatalf("remaining went negative: %d", res.Remaining)
			}
			prev = res.Remaining
		}
	})
}

func TestRetryAfterSeconds(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	res := Result{ResetTime: start.Add(90500 * time.Millisecond)}
	if got := res.RetryAfterSeconds(start); got != 91 {
		t.Errorf("RetryAfterSeconds = %d, want 91 (rounded up)", got)
	}

	past := Result{ResetTime: start.Add(-time.Second)}
	if got := past.RetryAfterSeconds(start); got != 0 {
		t.Errorf("RetryAfterSeconds for past reset = %d, want 0", got)
	}
}

func TestSweep(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l, now := newTestLimiter(start)

	for i := 0; i < 50; i++ {
		l.Check(fmt.Sprintf("client-%d", i), 5, time.Minute)
	}
	l.Check("fresh", 5, time.Hour)

	*now = start.Add(2 * time.Minute)
	l.mu.Lock()
	l.sweep(*now)
	remaining := len(l.entries)
	l.mu.Unlock()

	if remaining != 1 {
		t.Errorf("entries after sweep = %d, want 1 (only the unexpired one)", remaining)
	}
}

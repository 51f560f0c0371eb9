// Package ratelimit implements a fixed-window request counter keyed by
// client identifier, held in process memory.
//
// The table is not shared across processes; running more than one
// instance needs an external counter store behind the same interface.
package ratelimit

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Result is the outcome of one admission check.
type Result struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Remaining is how many more requests fit in the current window.
	// Non-increasing within a window, never negative.
	Remaining int

	// ResetTime is when the current window closes.
	ResetTime time.Time
}

// RetryAfterSeconds is the whole-second wait to advertise on a denied
// request, rounded up so the client never retries early.
func (r Result) RetryAfterSeconds(now time.Time) int {
	secs := int(math.Ceil(r.ResetTime.Sub(now).Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}

type entry struct {
	count     int
	resetTime time.Time
}

// Limiter is a mutex-guarded map of per-identifier windows. Expired
// entries are swept lazily (~1% of calls) rather than on a timer;
// stale entries are harmless because an expired window is treated as
// fresh on next access, they only cost memory until a sweep runs.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// New creates an empty limiter.
func New() *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Check records one request for the identifier against a window of
// maxRequests per window duration and reports whether it is admitted.
func (l *Limiter) Check(identifier string, maxRequests int, window time.Duration) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if rand.IntN(100) == 0 {
		l.sweep(now)
	}

	e, ok := l.entries[identifier]
	if !ok || !now.Before(e.resetTime) {
		// First request, or the previous window has elapsed.
		e = &entry{count: 1, resetTime: now.Add(window)}
		l.entries[identifier] = e
		return Result{Allowed: true, Remaining: maxRequests - 1, ResetTime: e.resetTime}
	}

	if e.count >= maxRequests {
		return Result{Allowed: false, Remaining: 0, ResetTime: e.resetTime}
	}

	e.count++
	return Result{Allowed: true, Remaining: maxRequests - e.count, ResetTime: e.resetTime}
}

// sweep drops entries whose window has closed. Caller holds the lock.
func (l *Limiter) sweep(now time.Time) {
	for id, e := range l.entries {
		if !now.Before(e.resetTime) {
			delete(l.entries, id)
		}
	}
}

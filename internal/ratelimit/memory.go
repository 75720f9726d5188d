package ratelimit

import (
	"context"
	"sync"
	"time"
)

// attemptWindowSeconds is the fixed length of one login-attempt window.
// Both backends budget attempts per identity+address key within this window.
const attemptWindowSeconds = 1

// sweepIntervalSeconds is how often the in-memory backend evicts counters
// whose window has passed.
const sweepIntervalSeconds = 60

// loginCounter tracks attempts for one identity within its current window.
type loginCounter struct {
	windowStart int64
	attempts    int
}

// MemoryLimiter counts login attempts per identity in process memory. It is
// the backend of last resort: single-process only, so a restart forgives the
// in-flight window. Login keys embed the caller address, which makes the key
// space unbounded; expired counters are swept periodically.
type MemoryLimiter struct {
	mu       sync.Mutex
	attempts map[string]*loginCounter
	sweepAt  int64
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		attempts: make(map[string]*loginCounter),
	}
}

// Allow records one login attempt for key and reports whether it fits the
// per-window budget. A non-positive limit disables limiting.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	sec := now.Unix()
	windowStart := sec - sec%attemptWindowSeconds
	reset := time.Unix(windowStart+attemptWindowSeconds, 0).UTC()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(sec)

	counter := l.attempts[key]
	if counter == nil || counter.windowStart != windowStart {
		counter = &loginCounter{windowStart: windowStart}
		l.attempts[key] = counter
	}
	if counter.attempts >= limit {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	counter.attempts++
	return Result{Allowed: true, Remaining: limit - counter.attempts, Reset: reset}, nil
}

// sweep drops counters whose window has ended. Every unique identity+address
// pair that ever attempts a login gets its own entry, so unbounded retention
// would leak one counter per visitor.
func (l *MemoryLimiter) sweep(sec int64) {
	if sec < l.sweepAt {
		return
	}
	l.sweepAt = sec + sweepIntervalSeconds
	for key, counter := range l.attempts {
		if counter.windowStart+attemptWindowSeconds <= sec {
			delete(l.attempts, key)
		}
	}
}

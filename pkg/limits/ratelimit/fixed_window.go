package ratelimit

import (
	"context"
	"sync"
	"time"
)

// FixedWindow admits at most limit callers per window.
//
// # Algorithm
//
//  1. If the current window is stale (now - windowStart >= window), start a
//     new one at now with a zero count
//  2. If count < limit, increment count and admit
//  3. Otherwise wait until windowStart + window and retry from 1
//
// The window starts with the first admission after the previous one went
// stale, so capacity resets at discrete boundaries. Callers near a boundary
// may see up to 2*limit admissions within one window length; use SlidingLog
// when that burst is not acceptable.
//
// # Thread Safety
//
// FixedWindow is thread-safe. Steps 1-2 run under a mutex; step 3 runs
// without it.
type FixedWindow struct {
	limit  int
	window time.Duration

	mu          sync.Mutex
	windowStart time.Time // zero until the first admission
	count       int

	clock    clock
	observer Observer
}

// NewFixedWindow creates a fixed window limiter.
//
// Parameters:
//   - limit: Maximum admissions per window (must be positive)
//   - window: Window duration (must be positive)
//
// Example:
//
//	limiter, err := NewFixedWindow(5, time.Second) // 5 requests per second
func NewFixedWindow(limit int, window time.Duration) (*FixedWindow, error) {
	if err := validateLimits(limit, window); err != nil {
		return nil, err
	}

	return &FixedWindow{
		limit:    limit,
		window:   window,
		clock:    systemClock(),
		observer: noopObserver{},
	}, nil
}

// Acquire blocks until the caller is admitted or ctx is done.
func (fw *FixedWindow) Acquire(ctx context.Context) error {
	return acquire(ctx, fw.clock, fw.observer, fw.reserve)
}

// reserve is the check-and-update step.
func (fw *FixedWindow) reserve() reservation {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := fw.clock.now()

	if now.Sub(fw.windowStart) >= fw.window {
		fw.windowStart = now
		fw.count = 0
	}

	if fw.count < fw.limit {
		fw.count++
		return reservation{admitted: true, at: now}
	}

	return reservation{resetAt: fw.windowStart.Add(fw.window)}
}

// Stats returns the current window state. A stale window is reported as
// fully available without resetting it.
func (fw *FixedWindow) Stats() Stats {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := fw.clock.now()
	if now.Sub(fw.windowStart) >= fw.window {
		return Stats{Limit: fw.limit, Remaining: fw.limit}
	}

	stats := Stats{
		Limit:     fw.limit,
		Remaining: fw.limit - fw.count,
	}
	if stats.Remaining == 0 {
		stats.Reset = fw.windowStart.Add(fw.window)
	}
	return stats
}

// Limit returns the configured admissions per window.
func (fw *FixedWindow) Limit() int {
	return fw.limit
}

// Window returns the configured window duration.
func (fw *FixedWindow) Window() time.Duration {
	return fw.window
}

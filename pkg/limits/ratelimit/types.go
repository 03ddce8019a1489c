package ratelimit

import (
	"context"
	"time"
)

// Strategy names a window algorithm.
type Strategy string

const (
	// StrategyFixed selects FixedWindow.
	StrategyFixed Strategy = "fixed"

	// StrategySliding selects SlidingLog.
	StrategySliding Strategy = "sliding"
)

// Acquirer is implemented by anything that can admit a caller.
//
// Acquire blocks until one unit of capacity has been reserved for the caller
// and returns nil. It only fails when ctx is done before capacity frees up.
type Acquirer interface {
	Acquire(ctx context.Context) error
}

// Limiter is an Acquirer that can also report its current state.
type Limiter interface {
	Acquirer

	// Stats returns a snapshot of the limiter state. It never mutates it.
	Stats() Stats
}

// Config contains configuration for a single limiter.
type Config struct {
	// Strategy selects the window algorithm. Empty means StrategyFixed.
	Strategy Strategy

	// Limit is the maximum number of admissions per window. Must be positive.
	Limit int

	// Window is the window duration. Must be positive.
	Window time.Duration

	// Observer receives admission and cancellation notifications (optional).
	Observer Observer
}

// Stats is a point-in-time view of a limiter.
type Stats struct {
	// Limit is the configured number of admissions per window.
	Limit int

	// Remaining is how many callers can be admitted right now without waiting.
	Remaining int

	// Reset is when the next unit of capacity frees up. It is zero when
	// capacity is available.
	Reset time.Time
}

// Observer is notified about the outcome of every Acquire call.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	// Admitted is called after a caller has been admitted. wait is the time
	// spent inside Acquire.
	Admitted(wait time.Duration)

	// Canceled is called when a caller gave up waiting.
	Canceled(wait time.Duration)
}

type noopObserver struct{}

func (noopObserver) Admitted(time.Duration) {}
func (noopObserver) Canceled(time.Duration) {}

package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// New creates the limiter selected by cfg.Strategy.
//
// Example:
//
//	limiter, err := New(Config{
//	    Strategy: StrategySliding,
//	    Limit:    5,
//	    Window:   time.Second,
//	})
func New(cfg Config) (Limiter, error) {
	switch cfg.Strategy {
	case StrategyFixed, "":
		fw, err := NewFixedWindow(cfg.Limit, cfg.Window)
		if err != nil {
			return nil, err
		}
		if cfg.Observer != nil {
			fw.observer = cfg.Observer
		}
		return fw, nil

	case StrategySliding:
		sl, err := NewSlidingLog(cfg.Limit, cfg.Window)
		if err != nil {
			return nil, err
		}
		if cfg.Observer != nil {
			sl.observer = cfg.Observer
		}
		return sl, nil

	default:
		return nil, &ConfigError{
			Field:   "strategy",
			Message: fmt.Sprintf("unknown strategy %q (expected %q or %q)", cfg.Strategy, StrategyFixed, StrategySliding),
		}
	}
}

// validateLimits rejects non-positive limits and windows.
func validateLimits(limit int, window time.Duration) error {
	if limit <= 0 {
		return &ConfigError{Field: "limit", Message: fmt.Sprintf("must be positive, got %d", limit)}
	}
	if window <= 0 {
		return &ConfigError{Field: "window", Message: fmt.Sprintf("must be positive, got %s", window)}
	}
	return nil
}

// clock abstracts time so tests can drive the wait loop deterministically.
type clock struct {
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func systemClock() clock {
	return clock{now: time.Now, sleep: sleepContext}
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// reservation is the outcome of one check-and-update step.
type reservation struct {
	admitted bool
	at       time.Time // admission time, set when admitted
	resetAt  time.Time // when capacity frees up, set when refused
}

// reserveFunc performs the check-and-update step under the limiter's mutex,
// reading the clock while holding it so admissions are recorded in order.
type reserveFunc func() reservation

// acquire runs the admission loop shared by all strategies:
//
//  1. reserve capacity under the lock
//  2. if refused, compute the remaining time to resetAt outside the lock
//  3. a non-positive remaining goes straight back to 1, otherwise sleep
//     until resetAt or cancellation and go back to 1
func acquire(ctx context.Context, c clock, obs Observer, reserve reserveFunc) error {
	start := c.now()

	for {
		if err := ctx.Err(); err != nil {
			obs.Canceled(c.now().Sub(start))
			return canceled(err)
		}

		r := reserve()
		if r.admitted {
			obs.Admitted(r.at.Sub(start))
			return nil
		}

		remaining := r.resetAt.Sub(c.now())
		if remaining <= 0 {
			continue
		}

		if err := c.sleep(ctx, remaining); err != nil {
			obs.Canceled(c.now().Sub(start))
			return canceled(err)
		}
	}
}

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingLog admits at most limit callers in any rolling interval of the
// window length.
//
// # Algorithm
//
//  1. Keep the times of the last limit admissions in a circular buffer
//  2. If fewer than limit admissions are recorded, or the oldest one is at
//     least one window old, record now and admit
//  3. Otherwise wait until the oldest admission ages out and retry from 1
//
// # Memory Efficiency
//
// The buffer holds exactly limit timestamps, independent of traffic.
//
// # Thread Safety
//
// SlidingLog is thread-safe. The buffer is only touched under a mutex and
// the wait runs without it.
type SlidingLog struct {
	limit  int
	window time.Duration

	mu    sync.Mutex
	times []time.Time // circular buffer of admission times
	head  int         // index of the oldest admission
	size  int         // number of recorded admissions

	clock    clock
	observer Observer
}

// NewSlidingLog creates a sliding log limiter.
//
// Example:
//
//	limiter, err := NewSlidingLog(5, time.Second)
func NewSlidingLog(limit int, window time.Duration) (*SlidingLog, error) {
	if err := validateLimits(limit, window); err != nil {
		return nil, err
	}

	return &SlidingLog{
		limit:    limit,
		window:   window,
		times:    make([]time.Time, limit),
		clock:    systemClock(),
		observer: noopObserver{},
	}, nil
}

// Acquire blocks until the caller is admitted or ctx is done.
func (sl *SlidingLog) Acquire(ctx context.Context) error {
	return acquire(ctx, sl.clock, sl.observer, sl.reserve)
}

func (sl *SlidingLog) reserve() reservation {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	now := sl.clock.now()

	if sl.size < sl.limit {
		sl.times[(sl.head+sl.size)%sl.limit] = now
		sl.size++
		return reservation{admitted: true, at: now}
	}

	oldest := sl.times[sl.head]
	if now.Sub(oldest) >= sl.window {
		// Overwrite the oldest slot; the next one becomes the oldest.
		sl.times[sl.head] = now
		sl.head = (sl.head + 1) % sl.limit
		return reservation{admitted: true, at: now}
	}

	return reservation{resetAt: oldest.Add(sl.window)}
}

// Stats returns the number of admissions still available in the rolling
// window ending now.
func (sl *SlidingLog) Stats() Stats {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	now := sl.clock.now()
	inWindow := 0
	for i := 0; i < sl.size; i++ {
		if now.Sub(sl.times[(sl.head+i)%sl.limit]) < sl.window {
			inWindow++
		}
	}

	stats := Stats{
		Limit:     sl.limit,
		Remaining: sl.limit - inWindow,
	}
	if stats.Remaining == 0 {
		stats.Reset = sl.times[sl.head].Add(sl.window)
	}
	return stats
}

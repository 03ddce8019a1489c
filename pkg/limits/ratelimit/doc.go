// Package ratelimit provides blocking rate limiters that admit at most N
// operations per time window.
//
// # Overview
//
// The ratelimit package implements two window strategies behind a single
// Acquire contract:
//
//   - Fixed Window: counts admissions in a window that starts with the first
//     admission after the previous window went stale
//   - Sliding Log: remembers the last N admission times so that no rolling
//     interval of the window length ever holds more than N admissions
//
// Exhaustion is never reported as an error. A caller that exceeds the limit
// is suspended until capacity frees up, then admitted.
//
// # Fixed Window
//
//	limiter, err := ratelimit.NewFixedWindow(5, time.Second) // 5 per second
//	if err != nil {
//	    return err
//	}
//	if err := limiter.Acquire(ctx); err != nil {
//	    // ctx was cancelled while waiting for capacity
//	}
//
// # Sliding Log
//
//	limiter, err := ratelimit.NewSlidingLog(100, time.Minute)
//
// # Strategy Selection
//
// New builds either limiter from a Config, which is how the submitter and
// the CLI construct them:
//
//	limiter, err := ratelimit.New(ratelimit.Config{
//	    Strategy: ratelimit.StrategyFixed,
//	    Limit:    5,
//	    Window:   time.Second,
//	})
//
// # Cancellation
//
// Acquire honours context cancellation while it waits. The returned error
// matches both ErrWaitCanceled and the context's own error:
//
//	err := limiter.Acquire(ctx)
//	if errors.Is(err, ratelimit.ErrWaitCanceled) {
//	    // shutting down; no capacity was consumed
//	}
//
// # Thread Safety
//
// All limiters are safe for concurrent use. The window state is only touched
// under the limiter's mutex and the wait always happens outside of it, so a
// sleeping caller never blocks others from checking capacity. Waiting callers
// are not queued; any of them may be admitted first once the window resets.
package ratelimit

package spool

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch processes the inbox once, then again after every burst of
// filesystem events that create or write envelope files. It blocks until
// ctx is canceled, waits for any in-flight run, and returns nil.
func (p *Processor) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.config.Inbox); err != nil {
		return fmt.Errorf("failed to watch spool inbox: %w", err)
	}

	debounce := NewDebouncer(p.config.Debounce)
	defer func() {
		debounce.Stop()
		// Wait for a run the debouncer already started.
		p.run.Lock()
		p.run.Unlock()
	}()

	var trigger func()
	trigger = func() {
		debounce.Trigger(func() {
			if ctx.Err() != nil {
				return
			}
			if _, err := p.ProcessOnce(ctx); err != nil {
				if errors.Is(err, ErrRunInProgress) {
					// Try again once the current run has had time to finish.
					trigger()
					return
				}
				p.logger.ErrorContext(ctx, "spool run failed", "error", err)
			}
		})
	}

	p.logger.InfoContext(ctx, "spool watcher started",
		"debounce_ms", p.config.Debounce.Milliseconds(),
	)
	p.runLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "spool watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !shouldProcessEvent(event) {
				continue
			}
			p.logger.DebugContext(ctx, "spool event", "path", event.Name, "op", event.Op.String())
			trigger()

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Keep watching; the next event or restart will catch up.
			p.logger.ErrorContext(ctx, "spool watcher error", "error", err)
		}
	}
}

// runLogged runs ProcessOnce and logs instead of returning errors.
func (p *Processor) runLogged(ctx context.Context) {
	_, err := p.ProcessOnce(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrRunInProgress):
		p.logger.DebugContext(ctx, "spool run skipped, previous run still active")
	default:
		p.logger.ErrorContext(ctx, "spool run failed", "error", err)
	}
}

// shouldProcessEvent reports whether event may have added an envelope.
func shouldProcessEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return isEnvelope(filepath.Base(event.Name))
}

// Debouncer collects rapid events and runs the latest callback once after
// a quiet period.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger (re)starts the quiet period. callback replaces any pending one.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		d.callback = nil
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}

package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// runner executes the sync callback with single-flight semantics. If a sync
// is already in progress, at most one additional run is queued; further
// triggers while one is pending are dropped.
type runner struct {
	logger *slog.Logger
	syncFn func(context.Context)

	mu      sync.Mutex // guards running and pending
	running bool
	pending bool
}

func (r *runner) sync(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	r.mu.Lock()
	if r.running {
		r.pending = true
		r.mu.Unlock()
		r.logger.Info("sync already in progress, queuing pending re-run")
		return
	}
	r.running = true
	r.mu.Unlock()

	for {
		r.syncFn(ctx)

		// Atomically check whether another sync was requested while we were
		// running. If not, release the running slot and stop; if yes, clear
		// the flag and loop to service that one pending request.
		r.mu.Lock()
		if !r.pending {
			r.running = false
			r.mu.Unlock()
			return
		}
		r.pending = false
		r.mu.Unlock()

		r.logger.Info("re-running sync due to pending request")
	}
}

// debouncer delays a callback until events stop arriving for delay.
type debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	delay    time.Duration
	callback func()
}

// trigger schedules the callback to run after the debounce delay
func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

// stop cancels any pending callback. A timer that already fired finds the
// callback cleared and does nothing.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = nil
	if d.timer != nil {
		d.timer.Stop()
	}
}

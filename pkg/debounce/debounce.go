// Package debounce provides a quiet-period debouncer with
// last-writer-wins semantics for keystroke-driven lookups.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays work until its quiet period has elapsed without a newer
// call. Each call supersedes any pending or in-flight one: the superseded
// work either never fires, or observes itself stale and discards its result.
type Debouncer struct {
	quiet time.Duration
	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

// New creates a debouncer with the given quiet period.
func New(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

// Do schedules fn after the quiet period. fn receives a stale check that
// returns true once a newer Do call has been made; asynchronous work must
// consult it before applying its result so stale responses are never
// applied over newer state.
func (d *Debouncer) Do(fn func(stale func() bool)) {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	stale := func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.gen != gen
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		if stale() {
			return
		}
		fn(stale)
	})
	d.mu.Unlock()
}

// Cancel discards any pending call and marks in-flight work stale.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Package debounce coalesces bursts of calls into a single delayed run.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs fn once after Trigger stops being called for the quiet
// period. At most one run is scheduled at a time.
type Debouncer struct {
	quiet time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	gen     uint64

	// run serializes fn so a flush never overlaps a timed run.
	run sync.Mutex
}

// New returns a debouncer that calls fn after quiet has elapsed since the
// last Trigger.
func New(quiet time.Duration, fn func()) *Debouncer {
	return &Debouncer{quiet: quiet, fn: fn}
}

// Trigger schedules fn, pushing any scheduled run back by the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending {
		d.timer.Stop()
	}
	d.gen++
	d.pending = true
	gen := d.gen
	d.timer = time.AfterFunc(d.quiet, func() { d.fire(gen) })
}

// Flush runs a scheduled fn immediately and reports whether one was pending.
func (d *Debouncer) Flush() bool {
	if !d.cancel() {
		return false
	}
	d.call()
	return true
}

// Stop drops a scheduled run without calling fn.
func (d *Debouncer) Stop() {
	d.cancel()
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pending {
		return false
	}
	d.timer.Stop()
	d.pending = false
	d.gen++
	return true
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	d.call()
}

func (d *Debouncer) call() {
	d.run.Lock()
	defer d.run.Unlock()
	d.fn()
}

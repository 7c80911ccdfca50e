// Package debounce coalesces bursts of calls into the last one.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiescence period used for search input
const DefaultWindow = 300 * time.Millisecond

// Timer is the part of *time.Timer the debouncer needs
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d; time.AfterFunc satisfies it through an adapter
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs only the last function passed to Trigger, once no further
// Trigger has arrived for the window (trailing edge).
type Debouncer struct {
	window    time.Duration
	afterFunc AfterFunc

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	stopped bool
}

// New creates a debouncer with the given window
func New(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{window: window, afterFunc: realAfterFunc}
}

// NewWithScheduler is New with a custom scheduler, for tests
func NewWithScheduler(window time.Duration, af AfterFunc) *Debouncer {
	d := New(window)
	if af != nil {
		d.afterFunc = af
	}
	return d
}

// Trigger cancels any pending call and schedules fn
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.afterFunc(d.window, func() {
		d.mu.Lock()
		// A Stop that lost the race with the timer firing still wins here.
		fire := !d.stopped && gen == d.gen
		if fire {
			d.timer = nil
		}
		d.mu.Unlock()
		if fire {
			fn()
		}
	})
}

// Cancel drops the pending call, if any
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether a call is scheduled
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending call and ignores later Triggers
func (d *Debouncer) Stop() {
	d.Cancel()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

// Window returns the quiescence period
func (d *Debouncer) Window() time.Duration {
	return d.window
}

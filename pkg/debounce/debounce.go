// Package debounce collapses a burst of calls into a single invocation carrying
// the arguments of the last call in the burst.
package debounce

import (
	"sync"
	"time"
)

// Debouncer wraps a function so it fires once per burst, with the most recent
// argument, after a quiet period has elapsed since the last call.
type Debouncer[T any] struct {
	mu      sync.Mutex
	wait    time.Duration
	fn      func(T)
	timer   *time.Timer
	arg     T
	pending bool
	gen     uint64
}

// New creates a debouncer around fn with the given quiet period.
func New[T any](wait time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{wait: wait, fn: fn}
}

// Call schedules fn with arg, replacing any argument from earlier calls in the
// current burst and restarting the quiet-period timer.
func (d *Debouncer[T]) Call(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.arg = arg
	d.pending = true
	// Invalidate any expired timer whose callback is waiting on the mutex;
	// only the timer scheduled for this generation may fire the call.
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

// Cancel discards the pending invocation without firing it.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
}

// Flush fires the pending invocation immediately, if there is one.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	arg := d.arg
	d.pending = false
	d.mu.Unlock()

	d.fn(arg)
}

// Pending reports whether an invocation is waiting on the quiet period.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	arg := d.arg
	d.pending = false
	d.mu.Unlock()

	d.fn(arg)
}

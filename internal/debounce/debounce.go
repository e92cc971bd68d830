// Package debounce coalesces rapidly changing values: only the last value
// pushed before a quiet period of the configured delay is propagated.
package debounce

import (
	"sync"
	"time"
)

type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	latest  T
	stopped bool
}

// New returns a debouncer that calls fn on its own goroutine once delay
// has passed without a new Push.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Push replaces any pending value and restarts the quiet period.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq, v) })
}

func (d *Debouncer[T]) fire(seq uint64, v T) {
	d.mu.Lock()
	// A newer Push won the race with this timer.
	if d.stopped || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.latest = v
	d.timer = nil
	d.mu.Unlock()

	d.fn(v)
}

// Latest returns the last propagated value.
func (d *Debouncer[T]) Latest() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest
}

// Stop drops any pending value; later Pushes are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

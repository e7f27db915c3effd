package suggest

import (
	"sync"
	"time"
)

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs only the last of a burst of triggers, after the burst has
// been quiet for the delay.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	clock Clock
	timer Timer
	seq   uint64
}

// NewDebouncer returns a debouncer on the given clock; nil uses wall time.
func NewDebouncer(delay time.Duration, clock Clock) *Debouncer {
	if clock == nil {
		clock = realClock{}
	}
	return &Debouncer{delay: delay, clock: clock}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger replaces any pending callback with fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.seq++
	id := d.seq
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.seq != id {
			d.mu.Unlock()
			return
		}
		d.seq++
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Arm invalidates whatever is pending and returns a fresh ticket.
func (d *Debouncer) Arm() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.seq++
	return d.seq
}

// Fired consumes ticket if it is still the latest one.
func (d *Debouncer) Fired(ticket uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ticket != d.seq {
		return false
	}
	d.seq++
	return true
}

// Cancel drops the pending callback or ticket.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.seq++
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

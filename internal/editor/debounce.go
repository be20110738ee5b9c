package editor

import (
	"sync"
	"time"
)

// DefaultAutosaveDelay is how long typing must pause before an autosave.
const DefaultAutosaveDelay = time.Second

// Debouncer runs fn once activity has been quiet for delay.
// Calls that arrive while fn is running schedule one more run.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	running bool
	stopped bool
}

func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Notify (re)starts the quiet period.
func (d *Debouncer) Notify() {
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.onTimer)
		return
	}
	d.timer.Reset(d.delay)
}

// Cancel drops a scheduled run. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	if d == nil {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	was := d.pending
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
	return was
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	if d == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels any scheduled run and ignores later Notify calls.
func (d *Debouncer) Stop() {
	if d == nil {
		return
	}
	d.Cancel()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

func (d *Debouncer) onTimer() {
	d.mu.Lock()
	if d.running {
		// A run is in flight; pick up the pending change after it.
		if d.timer != nil {
			d.timer.Reset(d.delay)
		}
		d.mu.Unlock()
		return
	}
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.running = true
	d.mu.Unlock()

	d.fn()

	d.mu.Lock()
	d.running = false
	if d.pending && d.timer != nil && !d.stopped {
		d.timer.Reset(d.delay)
	}
	d.mu.Unlock()
}

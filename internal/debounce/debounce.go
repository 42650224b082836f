// Package debounce coalesces a stream of search queries. Only the latest query
// is emitted, once input has been idle for the delay, and only when it differs
// from the previously emitted one.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the idle period used by the search boxes.
const DefaultDelay = 300 * time.Millisecond

// Debouncer is safe for concurrent use. emit runs on the timer goroutine,
// or on the caller's goroutine for Clear and Flush.
type Debouncer struct {
	delay time.Duration
	emit  func(string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	waiting bool
	// gen identifies the latest Push; a timer from an older Push emits nothing.
	gen     uint64
	last    string
	stopped bool
}

// New returns a debouncer that calls emit with settled queries.
func New(delay time.Duration, emit func(string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, emit: emit}
}

// Push records query as the latest input and restarts the idle timer.
func (d *Debouncer) Push(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending = query
	d.waiting = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	if q, ok := d.take(gen); ok {
		d.emit(q)
	}
}

// take claims the pending query if it should be emitted. gen must match the
// latest Push.
func (d *Debouncer) take(gen uint64) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.waiting || d.stopped || gen != d.gen {
		return "", false
	}
	d.waiting = false
	if d.pending == d.last {
		return "", false
	}
	d.last = d.pending
	return d.pending, true
}

// Flush emits the pending query now instead of waiting for the timer.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.mu.Unlock()
	d.fire(gen)
}

// Clear drops any pending query and emits the empty query immediately.
func (d *Debouncer) Clear() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.waiting = false
	d.pending = ""
	d.last = ""
	d.gen++
	d.mu.Unlock()

	d.emit("")
}

// Stop cancels the pending query. Nothing is emitted afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.waiting = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

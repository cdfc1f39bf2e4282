package utils

import (
	"sync"
	"time"
)

type pendingCall struct {
	timer *time.Timer
	gen   uint64
	fn    func()
}

// Debouncer coalesces calls per key: only the last call triggered within the delay runs.
// Each key is independent, so rows and inputs never cancel each other.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	gen     uint64
	pending map[string]*pendingCall
	stopped bool
	wg      sync.WaitGroup
}

// NewDebouncer creates a Debouncer with the given delay
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingCall),
	}
}

// Delay returns the configured delay
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules fn for key, replacing any call still pending for that key
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if prev, ok := d.pending[key]; ok {
		if prev.timer.Stop() {
			d.wg.Done()
		}
	}

	d.gen++
	call := &pendingCall{gen: d.gen, fn: fn}
	d.wg.Add(1)
	call.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.fire(key, call.gen)
	})
	d.pending[key] = call
}

func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	call, ok := d.pending[key]
	if !ok || call.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	call.fn()
}

// Flush runs the pending call for key right away. It reports whether a call was pending.
func (d *Debouncer) Flush(key string) bool {
	d.mu.Lock()
	call, ok := d.pending[key]
	if !ok {
		d.mu.Unlock()
		return false
	}
	delete(d.pending, key)
	if call.timer.Stop() {
		d.wg.Done()
	}
	d.mu.Unlock()

	call.fn()
	return true
}

// Cancel drops the pending call for key. It reports whether a call was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	call, ok := d.pending[key]
	if !ok {
		return false
	}
	delete(d.pending, key)
	if call.timer.Stop() {
		d.wg.Done()
	}
	return true
}

// CancelPrefix drops every pending call whose key starts with prefix
func (d *Debouncer) CancelPrefix(prefix string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for key, call := range d.pending {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(d.pending, key)
			if call.timer.Stop() {
				d.wg.Done()
			}
			n++
		}
	}
	return n
}

// Pending reports whether a call is scheduled for key
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Stop cancels every pending call and waits for running ones to finish.
// Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key, call := range d.pending {
		delete(d.pending, key)
		if call.timer.Stop() {
			d.wg.Done()
		}
	}
	d.mu.Unlock()

	d.wg.Wait()
}

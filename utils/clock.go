package utils

import (
	"sync"
	"time"
)

// Clock abstracts time for the session watchdog and debouncers
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// Now returns time.Now()
func (RealClock) Now() time.Time { return time.Now() }

// FakeClock is a settable clock for tests
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a FakeClock starting at t
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to t
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

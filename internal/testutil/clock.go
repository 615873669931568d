package testutil

import (
	"sync"
	"time"
)

// Epoch is the wall time FixedClock starts at by default.
var Epoch = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

// FixedClock provides deterministic wall-clock readings for tests.
//
// Every call to Now returns the current reading and then advances it by the
// configured step. A zero step freezes time, which keeps ledger dates stable
// for golden output comparison.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	step  time.Duration
}

// NewFixedClock creates a frozen clock reading Epoch.
func NewFixedClock() *FixedClock {
	return NewSteppingClock(Epoch, 0)
}

// NewSteppingClock creates a clock starting at start that advances by step
// after every reading.
func NewSteppingClock(start time.Time, step time.Duration) *FixedClock {
	return &FixedClock{start: start, now: start, step: step}
}

// Now returns the current reading and advances the clock.
// Its signature matches engine.WithClock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Reset rewinds the clock to its start time.
func (c *FixedClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}

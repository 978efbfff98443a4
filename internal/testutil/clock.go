package testutil

import (
	"sync"
	"time"
)

// StepClock is a deterministic wall clock for tests. Every call to Now
// advances it by a fixed step, so any measured interval is a whole number of
// steps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu    sync.Mutex
	t     time.Time
	step  time.Duration
	calls int
}

// NewStepClock creates a clock starting at the Unix epoch.
//
// The first call to Now() returns epoch+step.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{t: time.Unix(0, 0).UTC(), step: step}
}

// Now advances the clock by one step and returns the new time.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	c.calls++
	return c.t
}

// Calls returns how many times Now has been called.
func (c *StepClock) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Reset returns the clock to the epoch.
//
// Used for test reuse. After Reset(), the next call to Now() returns epoch+step.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = time.Unix(0, 0).UTC()
	c.calls = 0
}

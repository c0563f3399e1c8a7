package testutil

import "sync"

// DeterministicClock hands out evenly spaced millisecond timestamps.
//
// Unlike wall-clock time, the same clock configuration yields the same
// timestamps on every run, so logs built from it are byte-identical.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu     sync.Mutex
	start  float64
	stepMs float64
	ticks  int
}

// NewDeterministicClock creates a clock whose first Next returns startMs.
func NewDeterministicClock(startMs, stepMs float64) *DeterministicClock {
	return &DeterministicClock{start: startMs, stepMs: stepMs}
}

// Next returns the current timestamp and advances by one step.
func (c *DeterministicClock) Next() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.start + float64(c.ticks)*c.stepMs
	c.ticks++
	return ts
}

// Skip advances the clock by n steps without returning timestamps.
func (c *DeterministicClock) Skip(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks += n
}

// Reset rewinds the clock so the next call to Next returns the start again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}

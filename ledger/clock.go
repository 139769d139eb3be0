package ledger

import (
	"sync"
	"time"
)

// =============================================================================
// CLOCK - The only source of "now" (swappable for deterministic tests)
// =============================================================================

// Clock supplies the current instant and calendar day. Replay never reads a
// Clock; only event builders and the materializer do. Tests swap in a
// ManualClock without touching production code paths.
type Clock interface {
	Now() time.Time
	Today() Date
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
func (c SystemClock) Today() Date  { return DateOf(c.Now()) }

// ManualClock is a settable clock for tests and demos.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now.UTC()}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Today() Date { return DateOf(c.Now()) }

// Set moves the clock to a specific instant.
func (c *ManualClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now.UTC()
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

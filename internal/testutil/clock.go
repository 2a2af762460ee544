package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Clock is a ct.Clock that only moves when told to.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// FixedClock returns a Clock reading 2024-01-15 10:30:00 UTC.
func FixedClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// RunIDs hands out "run-1", "run-2", and so on. The zero value is ready
// to use.
type RunIDs struct {
	n atomic.Int64
}

func (g *RunIDs) New() string {
	return fmt.Sprintf("run-%d", g.n.Add(1))
}

package htlc

import (
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/clock"
)

// Clock is a read-only source of the current ledger time. Both clock
// implementations from lnd (default and test) satisfy it.
type Clock interface {
	Now() time.Time
}

var _ Clock = (clock.Clock)(nil)

// MonotonicClock wraps a Clock so that returned times never go backwards.
// A wall clock stepping back (NTP correction, operator mistake) must not
// reopen a swap whose deadline was already observed as passed.
type MonotonicClock struct {
	mu   sync.Mutex
	src  Clock
	last time.Time
}

// NewMonotonicClock returns a clock reading from src. A nil source falls
// back to the system clock.
func NewMonotonicClock(src Clock) *MonotonicClock {
	if src == nil {
		src = clock.NewDefaultClock()
	}
	return &MonotonicClock{src: src}
}

// Now returns the current time of the underlying source or the latest
// time returned so far, whichever is later.
func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.src.Now()
	if now.Before(c.last) {
		return c.last
	}
	c.last = now
	return now
}

// UnixNow returns Now with seconds precision.
func (c *MonotonicClock) UnixNow() UnixTime {
	return AsUnixTime(c.Now())
}

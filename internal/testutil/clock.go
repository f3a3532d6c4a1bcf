// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"sync"
	"time"
)

// clockEpoch is where a FakeClock starts when given the zero time.
var clockEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// FakeClock is a manually advanced clock for token expiry and listing TTL
// tests. It satisfies any interface with a Now() time.Time method.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a clock reading start, or clockEpoch when start is
// zero.
func NewFakeClock(start time.Time) *FakeClock {
	if start.IsZero() {
		start = clockEpoch
	}
	return &FakeClock{now: start}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

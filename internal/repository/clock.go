package repository

import (
	"sync"
	"time"
)

// Clock supplies write timestamps.
type Clock interface {
	Now() time.Time
}

// monotonicClock truncates to the store's millisecond precision and never hands out the
// same instant twice, so every write gets a strictly later updatedAt.
type monotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewMonotonicClock wraps now; a nil now means time.Now.
func NewMonotonicClock(now func() time.Time) Clock {
	if now == nil {
		now = time.Now
	}
	return &monotonicClock{now: now}
}

func (c *monotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Millisecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t
}

var defaultClock = NewMonotonicClock(nil)

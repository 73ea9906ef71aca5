package core

import (
	"sync/atomic"
	"time"
)

// Clock is the priority-timestamp source for orders. Every Tick must return a
// value strictly greater than all previously returned ones, since timestamps
// break price ties in the book.
type Clock interface {
	Tick() int64
}

// LogicalClock is a monotonic counter Clock. It is the default used by the
// engine and produces deterministic timestamps in tests.
type LogicalClock struct {
	now int64
}

// NewLogicalClock creates a LogicalClock starting at zero
func NewLogicalClock() *LogicalClock {
	return &LogicalClock{}
}

// Tick returns the next counter value
func (c *LogicalClock) Tick() int64 {
	return atomic.AddInt64(&c.now, 1)
}

// WallClock is a Clock backed by the system clock. Successive calls are forced
// to be strictly increasing even when the wall time does not advance.
type WallClock struct {
	last int64
}

// NewWallClock creates a WallClock
func NewWallClock() *WallClock {
	return &WallClock{}
}

// Tick returns the current time in nanoseconds, bumped past the previous value
// if necessary
func (c *WallClock) Tick() int64 {
	for {
		last := atomic.LoadInt64(&c.last)
		now := time.Now().UnixNano()
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&c.last, last, now) {
			return now
		}
	}
}

package pasur

import (
	"sort"
	"time"
)

// Scheduler runs fn once d has passed. Implementations must not run fn before After returns
// and must run continuations one at a time.
type Scheduler interface {
	After(d time.Duration, fn func())
}

type timer struct {
	at  time.Duration
	seq int
	fn  func()
}

// VirtualClock is a Scheduler that only moves when told to. Timers that are due at the same
// instant run in the order they were scheduled.
// The zero value for VirtualClock is valid.
type VirtualClock struct {
	now    time.Duration
	seq    int
	timers []timer
}

// NewVirtualClock returns a clock at time zero.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{}
}

// After implements Scheduler.
func (c *VirtualClock) After(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	c.seq++
	c.timers = append(c.timers, timer{at: c.now + d, seq: c.seq, fn: fn})
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].at == c.timers[j].at {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].at < c.timers[j].at
	})
}

// Now is how much virtual time has passed.
func (c *VirtualClock) Now() time.Duration {
	return c.now
}

// Pending is the number of continuations waiting to run.
func (c *VirtualClock) Pending() int {
	return len(c.timers)
}

// step runs the earliest timer, moving the clock forward to it.
func (c *VirtualClock) step() {
	t := c.timers[0]
	c.timers = c.timers[1:]
	if t.at > c.now {
		c.now = t.at
	}
	t.fn()
}

// Advance moves the clock forward by d, running everything that becomes due on the way,
// including continuations scheduled by those that run.
func (c *VirtualClock) Advance(d time.Duration) {
	end := c.now + d
	for len(c.timers) > 0 && c.timers[0].at <= end {
		c.step()
	}
	c.now = end
}

// Drain runs continuations until none are left or limit of them have run. It returns how many
// ran.
func (c *VirtualClock) Drain(limit int) int {
	n := 0
	for len(c.timers) > 0 && n < limit {
		c.step()
		n++
	}
	return n
}

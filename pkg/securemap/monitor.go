package securemap

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// collisionMonitor keeps a rolling log of inserts into long buckets and
// decides when their rate amounts to an attack.
type collisionMonitor struct {
	clock     clockwork.Clock
	maxChain  int
	maxEvents int
	window    time.Duration
	events    []time.Time
}

func newCollisionMonitor(clock clockwork.Clock, cfg Config) *collisionMonitor {
	return &collisionMonitor{
		clock:     clock,
		maxChain:  cfg.MaxChainLength,
		maxEvents: cfg.MaxCollisionEvents,
		window:    cfg.CollisionWindow,
		events:    make([]time.Time, 0, cfg.MaxCollisionEvents),
	}
}

// observe is called with the length of the target bucket before a write.
// recorded reports whether the insert counted as a collision event; attack
// reports whether the events inside the window reached the limit.
func (c *collisionMonitor) observe(chainLen int) (recorded, attack bool) {
	if chainLen < c.maxChain {
		return false, false
	}

	now := c.clock.Now()
	c.events = append(c.events, now)

	// Events are appended in time order, so expired ones form a prefix.
	expired := 0
	for expired < len(c.events) && now.Sub(c.events[expired]) >= c.window {
		expired++
	}
	if expired > 0 {
		n := copy(c.events, c.events[expired:])
		clear(c.events[n:])
		c.events = c.events[:n]
	}

	return true, len(c.events) >= c.maxEvents
}

// recent returns the number of events currently inside the window.
func (c *collisionMonitor) recent() int {
	now := c.clock.Now()
	n := 0
	for _, ev := range c.events {
		if now.Sub(ev) < c.window {
			n++
		}
	}
	return n
}

func (c *collisionMonitor) reset() {
	clear(c.events)
	c.events = c.events[:0]
}

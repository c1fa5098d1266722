// Package clock implements the one-second session clock that drives the
// elapsed-time display of an open interview.
package clock

import (
	"fmt"
	"sync"
	"time"

	"mockinterview/internal/schedule"
)

// SessionClock counts elapsed seconds while a session is open.
type SessionClock struct {
	sched  schedule.Scheduler
	onTick func(seconds int)

	mu      sync.Mutex
	timer   schedule.Timer
	gen     uint64
	seconds int
	running bool
}

// New creates a stopped clock. onTick may be nil.
func New(sched schedule.Scheduler, onTick func(seconds int)) *SessionClock {
	if sched == nil {
		sched = schedule.NewReal()
	}
	return &SessionClock{sched: sched, onTick: onTick}
}

// Start resets the counter and begins ticking. Starting a running clock is a no-op.
func (c *SessionClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.gen++
	gen := c.gen
	c.seconds = 0
	c.running = true
	c.timer = c.sched.Every(time.Second, func() { c.tick(gen) })
}

// Stop halts the clock, keeping the last count. Safe to call repeatedly.
func (c *SessionClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Seconds returns the elapsed count.
func (c *SessionClock) Seconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seconds
}

// Running reports whether the clock is ticking.
func (c *SessionClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *SessionClock) tick(gen uint64) {
	c.mu.Lock()
	// A ticker goroutine may deliver one tick after Stop.
	if !c.running || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.seconds++
	seconds := c.seconds
	c.mu.Unlock()
	if c.onTick != nil {
		c.onTick(seconds)
	}
}

// FormatElapsed renders seconds as mm:ss. Minutes are not wrapped at 60.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

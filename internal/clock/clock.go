// Package clock supplies elapsed time since a fixed start instant and
// per-frame delta time on top of a clockwork time source.
//
// Wall time spent paused is excluded from elapsed time, so the drive signal
// resumes exactly where it stopped.
package clock

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type Clock struct {
	mu  sync.Mutex
	src clockwork.Clock

	start time.Time
	last  time.Time

	paused      bool
	pausedAt    time.Time
	pausedTotal time.Duration
}

// New fixes the start instant at src.Now().
func New(src clockwork.Clock) *Clock {
	if src == nil {
		src = clockwork.NewRealClock()
	}
	now := src.Now()
	return &Clock{src: src, start: now, last: now}
}

// Source returns the underlying time source, used for scheduling timers.
func (c *Clock) Source() clockwork.Clock { return c.src }

// Start returns the reference start instant.
func (c *Clock) Start() time.Time { return c.start }

// Now returns pause-adjusted time. It is never before Start.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowLocked()
}

func (c *Clock) nowLocked() time.Time {
	raw := c.src.Now()
	if c.paused {
		raw = c.pausedAt
	}
	now := raw.Add(-c.pausedTotal)
	if now.Before(c.start) {
		return c.start
	}
	return now
}

// Elapsed returns the pause-adjusted time since Start.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowLocked().Sub(c.start)
}

// Delta returns the time since the previous Delta call (or since Start for
// the first call). A non-monotonic source yields 0, never a negative delta.
func (c *Clock) Delta() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowLocked()
	d := now.Sub(c.last)
	if d < 0 {
		d = 0
	}
	if now.After(c.last) {
		c.last = now
	}
	return d
}

// Pause freezes elapsed time until Resume.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.paused = true
	c.pausedAt = c.src.Now()
}

// Resume continues elapsed time from where Pause froze it.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	if d := c.src.Now().Sub(c.pausedAt); d > 0 {
		c.pausedTotal += d
	}
	c.paused = false
	c.pausedAt = time.Time{}
}

func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// PausedTotal returns the cumulative paused duration, including a pause in progress.
func (c *Clock) PausedTotal() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.pausedTotal
	if c.paused {
		if d := c.src.Now().Sub(c.pausedAt); d > 0 {
			total += d
		}
	}
	return total
}

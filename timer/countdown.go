// Package timer provides frame-driven countdowns.
package timer

import "time"

// Countdown runs down by the frame delta passed to Tick. It finishes exactly
// once: the Tick that crosses zero reports it and every later Tick does not.
type Countdown struct {
	duration time.Duration
	elapsed  time.Duration
	finished bool
	onExpire func()
}

// New returns a countdown of d. onExpire, if not nil, runs on the Tick that
// finishes it.
func New(d time.Duration, onExpire func()) *Countdown {
	return &Countdown{duration: d, onExpire: onExpire}
}

// Tick advances the countdown by delta and reports whether it finished during
// this call.
func (c *Countdown) Tick(delta time.Duration) bool {
	if c.finished {
		return false
	}
	if delta > 0 {
		c.elapsed += delta
	}
	if c.elapsed < c.duration {
		return false
	}
	c.elapsed = c.duration
	c.finished = true
	if c.onExpire != nil {
		c.onExpire()
	}
	return true
}

// Fraction is the elapsed share of the duration, in [0, 1].
func (c *Countdown) Fraction() float64 {
	if c.duration <= 0 {
		return 1
	}
	return float64(c.elapsed) / float64(c.duration)
}

// Remaining is the time left before the countdown finishes.
func (c *Countdown) Remaining() time.Duration {
	return c.duration - c.elapsed
}

func (c *Countdown) Duration() time.Duration {
	return c.duration
}

func (c *Countdown) Finished() bool {
	return c.finished
}

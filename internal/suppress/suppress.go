// Package suppress guards the displayed position while a seek or a
// programmatic navigation is in flight. While a window is active,
// position events from the player or renderer must be discarded so a
// slow asynchronous update cannot overwrite a just-performed jump.
package suppress

import (
	"sync"
	"time"
)

// Reason explains why a suppression window is open.
type Reason int

const (
	Seeking Reason = iota
	ProgrammaticNav
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case Seeking:
		return "Seeking"
	case ProgrammaticNav:
		return "ProgrammaticNav"
	default:
		return "Unknown"
	}
}

// DefaultDeadline bounds a window that never receives its completion
// signal. Suppression must always clear eventually; otherwise a renderer
// error would freeze the displayed position for good.
const DefaultDeadline = 5 * time.Second

// SettleDelay is how long a window stays open after a seek is confirmed,
// to swallow the player's own catch-up events.
const SettleDelay = 600 * time.Millisecond

// Controller is a single suppression window: Idle -> Suppressed (Begin)
// -> Idle (End or deadline). Begin while suppressed restarts the window
// under the new reason.
type Controller struct {
	mu         sync.Mutex
	active     bool
	reason     Reason
	deadline   time.Duration
	timer      *time.Timer
	generation uint64
}

// New creates a controller with the given hard deadline. A zero deadline
// falls back to DefaultDeadline.
func New(deadline time.Duration) *Controller {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	return &Controller{deadline: deadline}
}

// Begin opens a suppression window. The window closes on End, EndAfter,
// or when the deadline elapses, whichever comes first.
func (c *Controller) Begin(reason Reason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = true
	c.reason = reason
	c.armLocked(c.deadline)
}

// End closes the window immediately.
func (c *Controller) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// EndAfter keeps the window open for the settle delay, then closes it.
// Used after a seek is confirmed so the player's catch-up position
// events are still swallowed.
func (c *Controller) EndAfter(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.armLocked(d)
}

// Suppressed reports whether a window is currently open.
func (c *Controller) Suppressed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Reason returns the reason of the open window. Only meaningful while
// Suppressed() is true.
func (c *Controller) Reason() Reason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Close cancels any armed timer. After Close no timer callback can touch
// the controller, so it is safe to tear down the owning session.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// armLocked replaces the active timer with one firing after d. The
// generation counter guards against a stale callback from a superseded
// timer clearing a newer window.
func (c *Controller) armLocked(d time.Duration) {
	c.generation++
	gen := c.generation
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation != gen {
			return
		}
		c.active = false
		c.timer = nil
	})
}

func (c *Controller) clearLocked() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.active = false
}

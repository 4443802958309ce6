// Package notify holds the single transient message shown to the user.
//
// A Channel is Idle or Visible. Show makes a message Visible and arms a
// one-shot expiry; showing again replaces the message and re-arms the timer,
// so only the newest message is ever visible and only one hide follows a
// burst of Shows.
package notify

import (
	"sync"
	"time"

	"github.com/sadopc/taskr/internal/core"
)

const DefaultTTL = 3000 * time.Millisecond

// Timer is the part of *time.Timer the channel needs.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so tests can fire expiries by hand.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

type Option func(*Channel)

func WithTTL(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.ttl = d
		}
	}
}

func WithClock(clock Clock) Option {
	return func(c *Channel) { c.clock = clock }
}

// OnChange registers fn to run after every transition. visible is false
// when the channel went Idle. fn runs without the channel lock held.
func OnChange(fn func(n core.Notification, visible bool)) Option {
	return func(c *Channel) { c.onChange = fn }
}

type Channel struct {
	ttl      time.Duration
	clock    Clock
	onChange func(core.Notification, bool)

	mu      sync.Mutex
	current core.Notification
	visible bool
	timer   Timer
	gen     uint64
}

func New(opts ...Option) *Channel {
	c := &Channel{ttl: DefaultTTL, clock: realClock{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Channel) TTL() time.Duration { return c.ttl }

// Show makes text visible, replacing any current message.
func (c *Channel) Show(text string, kind core.NotificationKind) core.Notification {
	c.mu.Lock()
	c.stopLocked()
	c.gen++
	gen := c.gen
	n := core.Notification{Text: text, Kind: kind, ExpiresAt: c.clock.Now().Add(c.ttl)}
	c.current = n
	c.visible = true
	c.timer = c.clock.AfterFunc(c.ttl, func() { c.expire(gen) })
	c.mu.Unlock()

	c.notify(n, true)
	return n
}

func (c *Channel) Success(text string) core.Notification {
	return c.Show(text, core.KindSuccess)
}

// Error shows core.Message(err).
func (c *Channel) Error(err error) core.Notification {
	return c.Show(core.Message(err), core.KindError)
}

// Hide forces Idle and cancels the pending expiry.
func (c *Channel) Hide() {
	c.mu.Lock()
	if !c.visible {
		c.mu.Unlock()
		return
	}
	c.stopLocked()
	c.gen++
	c.visible = false
	c.current = core.Notification{}
	c.mu.Unlock()

	c.notify(core.Notification{}, false)
}

func (c *Channel) expire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || !c.visible {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.visible = false
	c.current = core.Notification{}
	c.mu.Unlock()

	c.notify(core.Notification{}, false)
}

// Current returns the visible message, if any.
func (c *Channel) Current() (core.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.visible
}

func (c *Channel) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Channel) notify(n core.Notification, visible bool) {
	if c.onChange != nil {
		c.onChange(n, visible)
	}
}

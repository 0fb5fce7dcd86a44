// Package notify implements the single-slot notification channel. Exactly one
// message is visible at a time; a new message replaces the current one
// immediately and every message dismisses itself after a display delay
// followed by a fade.
package notify

import (
	"sync"
	"time"
)

// Kind is the notification flavour.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// ParseKind normalises a kind; unknown values fall back to info.
func ParseKind(raw string) Kind {
	switch Kind(raw) {
	case KindSuccess, KindWarning, KindError:
		return Kind(raw)
	default:
		return KindInfo
	}
}

// Phase is the lifecycle step of a message.
type Phase string

const (
	PhaseShown     Phase = "shown"
	PhaseFading    Phase = "fading"
	PhaseDismissed Phase = "dismissed"
)

// Default timings.
const (
	DefaultDisplay = 3 * time.Second
	DefaultFade    = 300 * time.Millisecond
)

// Message is a notification and its current phase.
type Message struct {
	ID      uint64    `json:"id"`
	Text    string    `json:"text"`
	Kind    Kind      `json:"kind"`
	Phase   Phase     `json:"phase"`
	ShownAt time.Time `json:"shownAt"`
}

// Listener observes phase transitions. Listeners run outside the channel lock
// and may call back into the channel.
type Listener func(Message)

// Option customises a Channel.
type Option func(*Channel)

// WithDisplay sets how long a message stays fully visible.
func WithDisplay(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.display = d
		}
	}
}

// WithFade sets the fade-out duration that follows the display delay.
func WithFade(d time.Duration) Option {
	return func(c *Channel) {
		if d >= 0 {
			c.fade = d
		}
	}
}

// WithListener registers a listener at construction time.
func WithListener(listener Listener) Option {
	return func(c *Channel) {
		if listener != nil {
			c.listeners = append(c.listeners, listener)
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) {
		if now != nil {
			c.now = now
		}
	}
}

// Channel is safe for concurrent use.
type Channel struct {
	mu        sync.Mutex
	display   time.Duration
	fade      time.Duration
	now       func() time.Time
	listeners []Listener
	current   *Message
	timer     *time.Timer
	seq       uint64
	closed    bool
}

// New returns a channel with the default timings.
func New(options ...Option) *Channel {
	c := &Channel{
		display: DefaultDisplay,
		fade:    DefaultFade,
		now:     time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Subscribe adds a listener.
func (c *Channel) Subscribe(listener Listener) {
	if listener == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, listener)
	c.mu.Unlock()
}

// Notify shows text, removing any message currently on screen.
func (c *Channel) Notify(text string, kind Kind) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	var events []Message
	if c.current != nil {
		c.stopTimer()
		removed := *c.current
		removed.Phase = PhaseDismissed
		events = append(events, removed)
	}
	c.seq++
	msg := Message{ID: c.seq, Text: text, Kind: ParseKind(string(kind)), Phase: PhaseShown, ShownAt: c.now()}
	c.current = &msg
	id := msg.ID
	c.timer = time.AfterFunc(c.display, func() { c.beginFade(id) })
	events = append(events, msg)
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	dispatch(listeners, events...)
}

// Info, Success, Warning and Error are shorthands for Notify.
func (c *Channel) Info(text string)    { c.Notify(text, KindInfo) }
func (c *Channel) Success(text string) { c.Notify(text, KindSuccess) }
func (c *Channel) Warning(text string) { c.Notify(text, KindWarning) }
func (c *Channel) Error(text string)   { c.Notify(text, KindError) }

// Current returns the message on screen, if any.
func (c *Channel) Current() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Message{}, false
	}
	return *c.current, true
}

// Dismiss removes the current message without waiting for its timers.
func (c *Channel) Dismiss() {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return
	}
	c.stopTimer()
	removed := *c.current
	removed.Phase = PhaseDismissed
	c.current = nil
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	dispatch(listeners, removed)
}

// Close stops pending timers. Later calls to Notify are ignored.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimer()
	c.current = nil
	c.closed = true
}

func (c *Channel) beginFade(id uint64) {
	c.mu.Lock()
	if c.closed || c.current == nil || c.current.ID != id {
		c.mu.Unlock()
		return
	}
	c.current.Phase = PhaseFading
	msg := *c.current
	c.timer = time.AfterFunc(c.fade, func() { c.finish(id) })
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	dispatch(listeners, msg)
}

func (c *Channel) finish(id uint64) {
	c.mu.Lock()
	if c.closed || c.current == nil || c.current.ID != id {
		c.mu.Unlock()
		return
	}
	msg := *c.current
	msg.Phase = PhaseDismissed
	c.current = nil
	c.timer = nil
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	dispatch(listeners, msg)
}

func (c *Channel) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Channel) snapshotListeners() []Listener {
	return append([]Listener(nil), c.listeners...)
}

func dispatch(listeners []Listener, events ...Message) {
	for _, event := range events {
		for _, listener := range listeners {
			listener(event)
		}
	}
}

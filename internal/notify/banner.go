// Package notify implements the single-slot notification banner: one
// transient event at a time, auto-dismissed after a fixed delay, replaced
// immediately by any newer event.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTTL is how long an event stays visible.
const DefaultTTL = 5 * time.Second

// Event is one banner notification.
type Event struct {
	Title   string
	Message string
	Icon    string
}

// Listener observes every show (visible=true) and hide (visible=false).
type Listener func(ev Event, visible bool)

// Banner holds at most one visible Event. It is safe for concurrent use.
type Banner struct {
	ttl time.Duration

	mu        sync.Mutex
	active    Event
	visible   bool
	gen       uint64
	timer     *time.Timer
	listeners map[uint64]Listener
	nextID    uint64
}

// NewBanner returns a banner that dismisses events after ttl (DefaultTTL
// when ttl <= 0).
func NewBanner(ttl time.Duration) *Banner {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Banner{ttl: ttl, listeners: make(map[uint64]Listener)}
}

// Show replaces the visible event with ev and restarts the dismiss timer.
func (b *Banner) Show(ev Event) {
	b.mu.Lock()
	b.stopLocked()
	b.gen++
	gen := b.gen
	b.active, b.visible = ev, true
	b.timer = time.AfterFunc(b.ttl, func() { b.expire(gen) })
	ls := b.listenersLocked()
	b.mu.Unlock()

	log.Debug().Str("title", ev.Title).Dur("ttl", b.ttl).Msg("banner shown")

	for _, l := range ls {
		l(ev, true)
	}
}

// Hide dismisses the visible event, if any.
func (b *Banner) Hide() {
	b.mu.Lock()
	if !b.visible {
		b.mu.Unlock()
		return
	}
	b.stopLocked()
	b.gen++
	ev := b.active
	b.active, b.visible = Event{}, false
	ls := b.listenersLocked()
	b.mu.Unlock()

	for _, l := range ls {
		l(ev, false)
	}
}

// Active returns the visible event.
func (b *Banner) Active() (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active, b.visible
}

// Pending returns the number of armed dismiss timers: 0 or 1.
func (b *Banner) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		return 1
	}
	return 0
}

// Subscribe registers l and returns a function that removes it.
func (b *Banner) Subscribe(l Listener) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[id] = l
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// expire hides the event shown at generation gen. A timer that fires after
// a newer Show or Hide finds a different generation and does nothing.
func (b *Banner) expire(gen uint64) {
	b.mu.Lock()
	if gen != b.gen || !b.visible {
		b.mu.Unlock()
		return
	}
	b.timer = nil
	b.gen++
	ev := b.active
	b.active, b.visible = Event{}, false
	ls := b.listenersLocked()
	b.mu.Unlock()

	log.Debug().Str("title", ev.Title).Msg("banner expired")
	for _, l := range ls {
		l(ev, false)
	}
}

func (b *Banner) stopLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *Banner) listenersLocked() []Listener {
	out := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		out = append(out, l)
	}
	return out
}

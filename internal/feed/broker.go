package feed

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultBuffer is the per-subscription queue length used when NewBroker
// is given a non-positive size.
const DefaultBuffer = 256

// Handler receives matching events. Handlers of one subscription run
// sequentially, in publish order, on a goroutine owned by the subscription.
type Handler func(Event)

// Broker is an in-process publish/subscribe hub for change events.
// It is safe for concurrent use.
type Broker struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	taps   []func(Event)
	next   uint64
	buffer int
	closed bool
}

// NewBroker creates a broker whose subscriptions queue up to buffer
// undelivered events each. Events arriving at a full queue are dropped.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker{subs: make(map[uint64]*Subscription), buffer: buffer}
}

// Publish fans ev out to every matching subscription and hands it to the
// publish taps (the relay). Publishing on a closed broker is a no-op.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	taps := b.taps
	b.mu.RUnlock()

	if !b.deliver(ev) {
		return
	}
	for _, tap := range taps {
		tap(ev)
	}
}

// OnPublish registers fn to observe every locally published event.
// Events injected with Inject do not reach taps.
func (b *Broker) OnPublish(fn func(Event)) {
	b.mu.Lock()
	b.taps = append(b.taps, fn)
	b.mu.Unlock()
}

// Inject delivers ev to local subscribers only. The relay uses it for
// events produced by other instances.
func (b *Broker) Inject(ev Event) { b.deliver(ev) }

func (b *Broker) deliver(ev Event) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return false
	}
	eventsPublished.WithLabelValues(ev.Table, string(ev.Type)).Inc()
	for _, s := range b.subs {
		if !s.topic.Matches(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			eventsDropped.Inc()
			log.Warn().
				Str("table", ev.Table).
				Str("type", string(ev.Type)).
				Uint64("subscription", s.id).
				Msg("feed subscriber queue full; event dropped")
		}
	}
	return true
}

// Subscribe registers h for events matching topic. The returned
// subscription must be closed to release its goroutine. Subscribing to a
// closed broker returns an already-closed subscription.
func (b *Broker) Subscribe(topic Topic, h Handler) *Subscription {
	s := &Subscription{
		topic:   topic,
		handler: h,
		ch:      make(chan Event, b.buffer),
		done:    make(chan struct{}),
		broker:  b,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(s.done)
		return s
	}
	b.next++
	s.id = b.next
	b.subs[s.id] = s
	b.mu.Unlock()

	subscriptionsActive.Inc()
	go s.run()
	return s
}

// Len returns the number of open subscriptions.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close unsubscribes everyone and rejects further publishes.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}

func (b *Broker) remove(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[id]; !ok {
		return false
	}
	delete(b.subs, id)
	return true
}

// Subscription is one registered interest in a Topic.
type Subscription struct {
	id      uint64
	topic   Topic
	handler Handler
	ch      chan Event
	done    chan struct{}
	once    sync.Once
	broker  *Broker
}

// Topic returns the subscription's topic.
func (s *Subscription) Topic() Topic { return s.topic }

// Done is closed once the subscription has been closed.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close unsubscribes. Events still queued are discarded. Safe to call
// more than once and from inside the handler.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.broker.remove(s.id) {
			subscriptionsActive.Dec()
		}
		select {
		case <-s.done:
		default:
			close(s.done)
		}
	})
}

func (s *Subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.ch:
			select {
			case <-s.done:
				return
			default:
			}
			s.handle(ev)
		}
	}
}

func (s *Subscription) handle(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("table", ev.Table).
				Uint64("subscription", s.id).
				Msg("feed handler panicked")
		}
	}()
	s.handler(ev)
	eventsDelivered.Inc()
}

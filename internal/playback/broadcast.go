package playback

import "sync"

// Per-subscriber buffer. Small on purpose: a stalled observer only delays
// its own view of the world, and only by this many events.
const eventBufferSize = 8

// Broadcaster fans events out to any number of subscribers. Publishing
// never blocks: when a subscriber's buffer is full, its oldest undelivered
// event is dropped to make room. Observers that care about a full picture
// re-query the player state on subscribe instead of relying on replay.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// Subscription is one observer's read end.
type Subscription struct {
	ch  chan Event
	bus *Broadcaster
}

// NewBroadcaster creates an empty bus.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new observer. The returned subscription must be
// closed when the observer goes away.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := &Subscription{ch: make(chan Event, eventBufferSize), bus: b}
	if b.closed {
		close(s.ch)
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Publish delivers the event to every subscriber, dropping the oldest
// buffered event of any subscriber that has fallen behind.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for s := range b.subs {
		select {
		case s.ch <- ev:
			continue
		default:
		}
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
}

// Close shuts the bus down. Every subscriber's channel is closed; further
// publishes are no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		close(s.ch)
		delete(b.subs, s)
	}
}

// Events returns the subscriber's channel. It is closed when either the
// subscription or the whole bus closes.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Close unregisters the subscriber and closes its channel.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if _, ok := s.bus.subs[s]; !ok {
		return
	}
	delete(s.bus.subs, s)
	close(s.ch)
}

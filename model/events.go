package model

import "sync"

// SubscriptionEvent is the value type delivered on a tenant's event
// channel: either a wrapped upstream PlayerEvent, or the terminal
// DestroyedEvent marker, of which at most one is ever delivered.
type SubscriptionEvent interface {
	isSubscriptionEvent()
}

// PlayerEventEnvelope wraps one upstream PlayerEvent for delivery on a
// subscription.
type PlayerEventEnvelope struct {
	Event PlayerEvent
}

func (PlayerEventEnvelope) isSubscriptionEvent() {}

// DestroyedEvent is the terminal marker sent at most once per
// subscription, after which the channel is closed.
type DestroyedEvent struct{}

func (DestroyedEvent) isSubscriptionEvent() {}

// EventChannel is an unbounded, FIFO subscription channel. Send never
// blocks and never drops: a slow consumer causes the internal buffer to
// grow rather than lose or reject events. This departs deliberately from
// the bounded-channel-with-drop idiom used elsewhere for fan-out, because
// a subscription must deliver every event up to and including its
// terminal Destroyed marker.
type EventChannel struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buffer []SubscriptionEvent
	closed bool
	out    chan SubscriptionEvent
}

// NewEventChannel starts the channel's delivery pump and returns it ready
// to accept sends.
func NewEventChannel() *EventChannel {
	ec := &EventChannel{out: make(chan SubscriptionEvent)}
	ec.cond = sync.NewCond(&ec.mu)
	go ec.pump()
	return ec
}

func (ec *EventChannel) pump() {
	for {
		ec.mu.Lock()
		for len(ec.buffer) == 0 && !ec.closed {
			ec.cond.Wait()
		}
		if len(ec.buffer) == 0 && ec.closed {
			ec.mu.Unlock()
			close(ec.out)
			return
		}
		event := ec.buffer[0]
		ec.buffer = ec.buffer[1:]
		ec.mu.Unlock()
		ec.out <- event
	}
}

// Send enqueues an event for delivery. It never blocks and is a no-op
// once the channel has been closed.
func (ec *EventChannel) Send(event SubscriptionEvent) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if ec.closed {
		return
	}
	ec.buffer = append(ec.buffer, event)
	ec.cond.Signal()
}

// Close marks the channel as closed. Already-buffered events (including a
// just-sent DestroyedEvent) are still delivered before Events()'s channel
// closes.
func (ec *EventChannel) Close() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.closed = true
	ec.cond.Signal()
}

// Events returns the consumer-facing receive channel.
func (ec *EventChannel) Events() <-chan SubscriptionEvent {
	return ec.out
}

// SubscriptionMap is the concurrency-safe mapping from tenant-id to its
// EventChannel, shared between a node manager (dispatch writes, teardown
// clears) and the fleet registry (reads for tenant→node lookup).
type SubscriptionMap struct {
	mu sync.RWMutex
	m  map[GuildID]*EventChannel
}

// NewSubscriptionMap returns an empty map.
func NewSubscriptionMap() *SubscriptionMap {
	return &SubscriptionMap{m: make(map[GuildID]*EventChannel)}
}

// Store registers a subscription for guildID, replacing any existing one.
func (s *SubscriptionMap) Store(guildID GuildID, ch *EventChannel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[guildID] = ch
}

// Load returns the subscription for guildID, if any.
func (s *SubscriptionMap) Load(guildID GuildID) (*EventChannel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.m[guildID]
	return ch, ok
}

// Has reports whether guildID has a live subscription.
func (s *SubscriptionMap) Has(guildID GuildID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.m[guildID]
	return ok
}

// Delete removes guildID's subscription, if any.
func (s *SubscriptionMap) Delete(guildID GuildID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, guildID)
}

// Len returns the number of live subscriptions.
func (s *SubscriptionMap) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// BroadcastDestroyedAndClear sends a terminal DestroyedEvent to, and
// closes, every live subscription, then clears the map. It is safe to
// call more than once; subsequent calls are no-ops.
func (s *SubscriptionMap) BroadcastDestroyedAndClear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.m {
		ch.Send(DestroyedEvent{})
		ch.Close()
	}
	s.m = make(map[GuildID]*EventChannel)
}

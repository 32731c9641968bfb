package daemon

import "sync"

const subscriberBuffer = 256

type subscriber struct {
	ch     chan Event
	filter map[string]bool
}

// Hub fans events out to subscribers. Slow subscribers miss events rather
// than stalling the recorder.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe registers for the named events, or all events when none are given.
// The returned func unsubscribes and closes the channel.
func (h *Hub) Subscribe(events []string) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}
	if len(events) > 0 {
		sub.filter = make(map[string]bool, len(events))
		for _, e := range events {
			sub.filter[e] = true
		}
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
}

func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.filter != nil && !sub.filter[ev.Event] {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

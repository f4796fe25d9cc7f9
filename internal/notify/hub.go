// Package notify provides an in-process publish/subscribe hub for domain
// events. Side effects (websocket broadcast, reminders, audit trails) hang
// off subscriptions, keeping them decoupled from the core computation and
// independently testable.
package notify

import (
	"sync"
	"time"
)

// EventKind classifies a published domain event.
type EventKind string

const (
	EventInteractionLogged EventKind = "interaction_logged"
	EventBookingCreated    EventKind = "booking_created"
	EventEdgeStatusChanged EventKind = "edge_status_changed"
)

// Event is a domain event published to the hub.
type Event struct {
	Kind       EventKind   `json:"kind"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload,omitempty"`
}

// Hub is a fan-out publish/subscribe hub. Publish never blocks: a
// subscriber whose channel is full misses the event rather than stalling
// the publisher. Subscribers are expected to drain promptly.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function. The channel is buffered; it is closed by the
// unsubscribe function, never by Publish.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Event, 64)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber. Events are
// stamped with the publish time when OccurredAt is zero.
func (h *Hub) Publish(evt Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			// Slow subscriber: drop rather than block the write path.
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Package diag fans out redacted turn events to diagnostics subscribers.
package diag

import (
	"sync"
	"time"
)

// Event is one redacted conversation turn as seen by operators. Content and
// caller identity must be masked by the producer before publishing.
type Event struct {
	Caller        string    `json:"caller"`
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	Authenticated bool      `json:"authenticated"`
	At            time.Time `json:"at"`
}

// Hub is a drop-oldest-free broadcast hub: slow subscribers lose events
// instead of stalling the webhook path.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel func must be called
// exactly once; the channel is closed by it.
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
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports the number of active listeners.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

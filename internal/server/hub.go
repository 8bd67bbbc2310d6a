package server

import (
	"sync"

	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

const subscriberBuffer = 16

// Hub fans ingested event batches out to SSE subscribers. Publishing
// never blocks: a subscriber whose buffer is full misses the batch.
type Hub struct {
	mu   sync.Mutex
	subs map[chan []model.Event]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan []model.Event]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel func
// unregisters it and closes the channel; calling it twice is safe.
func (h *Hub) Subscribe() (<-chan []model.Event, func()) {
	ch := make(chan []model.Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers batch to every subscriber that has room for it.
func (h *Hub) Publish(batch []model.Event) {
	if len(batch) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- batch:
		default:
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

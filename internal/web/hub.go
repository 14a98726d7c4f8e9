package web

import (
	"sync"

	"github.com/sweeney/button-sensor/internal/logic"
)

// clientBuffer is how many events a slow websocket client may lag behind
// before events are dropped for it.
const clientBuffer = 16

// Hub fans button events out to connected websocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[chan logic.Event]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[chan logic.Event]struct{})}
}

func (h *Hub) subscribe() chan logic.Event {
	ch := make(chan logic.Event, clientBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan logic.Event) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// Broadcast delivers e to every client without blocking. Clients whose
// buffer is full miss the event.
func (h *Hub) Broadcast(e logic.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- e:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/mercantil-app/mercantilgo/internal/models"
)

// Hub maintains the set of connected admin dashboards and broadcasts
// order events to all of them
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("🖥️ Dashboard connected (%d active)", h.clientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("🔌 Dashboard disconnected (%d active)", h.clientCount())

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead; drop the message
				}
			}
			h.mu.RUnlock()
		}
	}
}

// OrderSynced notifies all connected dashboards about an upserted order.
// It implements the sync service's event sink.
func (h *Hub) OrderSynced(order *models.Order) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":  "order_synced",
		"order": order,
	})
	if err != nil {
		log.Printf("Error marshaling order event: %v", err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		// Never block a sync run on slow dashboard consumers
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/service"
)

// ErrHubBusy is returned by Publish when the broadcast buffer is full.
var ErrHubBusy = errors.New("ws hub broadcast buffer full")

// Message is what clients receive on the wire
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// feedMessage is an internal struct for routing messages to a feed
type feedMessage struct {
	Feed    string
	Message Message
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by feed name
	rooms map[string]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *feedMessage

	// Closed when Run returns
	done chan struct{}

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *feedMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop until ctx is cancelled.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for feed, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, feed)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.feed] == nil {
				h.rooms[client.feed] = make(map[*Client]bool)
			}
			h.rooms[client.feed][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.feed]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					// Clean up empty rooms
					if len(clients) == 0 {
						delete(h.rooms, client.feed)
					}
				}
			}
			h.mu.Unlock()

		case fm := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[fm.Feed]

			// Marshal message to JSON once
			message, err := json.Marshal(fm.Message)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			for client := range clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.rooms[fm.Feed], client)
					if len(h.rooms[fm.Feed]) == 0 {
						delete(h.rooms, fm.Feed)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToFeed queues a message for every client subscribed to feed.
// It never blocks; a full buffer drops the message.
func (h *Hub) BroadcastToFeed(feed string, msg Message) bool {
	select {
	case h.broadcast <- &feedMessage{Feed: feed, Message: msg}:
		return true
	default:
		return false
	}
}

// Publish routes an engine event to the floor feed and, for line and
// payment events, to the kitchen feed.
func (h *Hub) Publish(ctx context.Context, ev service.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := Message{Type: ev.Type, Payload: payload}

	if !h.BroadcastToFeed(enum.FeedFloor, msg) {
		return ErrHubBusy
	}
	if enum.KitchenEvents[ev.Type] && !h.BroadcastToFeed(enum.FeedKitchen, msg) {
		return ErrHubBusy
	}
	return nil
}

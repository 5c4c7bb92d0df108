package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Event types broadcast to POS and kitchen displays.
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventTicketFired  = "ticket.fired"
	EventLineStatus   = "line.status"
)

// Event is a WebSocket message. Station, when set, routes the event only to
// clients subscribed to that kitchen station.
type Event struct {
	Type    string          `json:"type"`
	Station string          `json:"station,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// outletEvent routes an event to one outlet's room.
type outletEvent struct {
	OutletID uuid.UUID
	Event    Event
}

// Hub maintains the set of active clients per outlet and broadcasts events
// to them.
type Hub struct {
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan *outletEvent

	mu sync.RWMutex
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *outletEvent, 256),
	}
}

// Run starts the hub's main loop. Call as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.outletID] == nil {
				h.rooms[client.outletID] = make(map[*Client]bool)
			}
			h.rooms[client.outletID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.outletID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.outletID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[event.OutletID]

			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			for client := range clients {
				// Station-scoped events skip clients watching a different station.
				if event.Event.Station != "" && client.station != "" && client.station != event.Event.Station {
					continue
				}
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.rooms[event.OutletID], client)
					if len(h.rooms[event.OutletID]) == 0 {
						delete(h.rooms, event.OutletID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToOutlet sends an event to all clients subscribed to an outlet.
func (h *Hub) BroadcastToOutlet(outletID uuid.UUID, event Event) {
	h.broadcast <- &outletEvent{
		OutletID: outletID,
		Event:    event,
	}
}

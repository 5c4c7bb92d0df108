package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, outletID uuid.UUID, station string) *Client {
	return &Client{
		hub:      hub,
		outletID: outletID,
		station:  station,
		send:     make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	outletID := uuid.New()
	client := mockClient(hub, outletID, "")

	// Register client
	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms[outletID] == nil {
		t.Fatal("outlet room not created")
	}
	if !hub.rooms[outletID][client] {
		t.Fatal("client not registered in outlet room")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	outletID := uuid.New()
	client := mockClient(hub, outletID, "")

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	// Room should be cleaned up when empty
	if hub.rooms[outletID] != nil {
		t.Fatal("outlet room not cleaned up after last client unregistered")
	}
}

func TestBroadcastToSingleOutlet(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	outlet1 := uuid.New()
	outlet2 := uuid.New()

	client1 := mockClient(hub, outlet1, "")
	client2 := mockClient(hub, outlet2, "")

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	// Broadcast to outlet1 only
	testPayload := json.RawMessage(`{"order_number":"TVL-042"}`)
	event := Event{
		Type:    EventOrderCreated,
		Payload: testPayload,
	}
	hub.BroadcastToOutlet(outlet1, event)

	// Check client1 receives the message
	select {
	case msg := <-client1.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != EventOrderCreated {
			t.Errorf("expected type '%s', got '%s'", EventOrderCreated, received.Type)
		}
		if string(received.Payload) != string(testPayload) {
			t.Errorf("expected payload '%s', got '%s'", testPayload, received.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client1 did not receive message")
	}

	// Check client2 does NOT receive the message
	select {
	case <-client2.send:
		t.Fatal("client2 should not have received message for different outlet")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message received
	}
}

func TestBroadcastToMultipleClientsInSameOutlet(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	outletID := uuid.New()
	client1 := mockClient(hub, outletID, "")
	client2 := mockClient(hub, outletID, "")
	client3 := mockClient(hub, outletID, "")

	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	testPayload := json.RawMessage(`{"status":"READY"}`)
	event := Event{
		Type:    EventLineStatus,
		Payload: testPayload,
	}
	hub.BroadcastToOutlet(outletID, event)

	// All three clients should receive the message
	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != EventLineStatus {
				t.Errorf("client%d: expected type '%s', got '%s'", i+1, EventLineStatus, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestStationScopedBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	outletID := uuid.New()
	grillDisplay := mockClient(hub, outletID, "GRILL")
	barDisplay := mockClient(hub, outletID, "BAR")
	posTerminal := mockClient(hub, outletID, "")

	hub.register <- grillDisplay
	hub.register <- barDisplay
	hub.register <- posTerminal
	time.Sleep(10 * time.Millisecond)

	event := Event{
		Type:    EventTicketFired,
		Station: "GRILL",
		Payload: json.RawMessage(`{"order_number":"TVL-007"}`),
	}
	hub.BroadcastToOutlet(outletID, event)

	// The grill display receives its ticket.
	select {
	case msg := <-grillDisplay.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if received.Station != "GRILL" {
			t.Errorf("station: got %s, want GRILL", received.Station)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("grill display did not receive its ticket")
	}

	// A POS terminal with no station filter sees everything.
	select {
	case <-posTerminal.send:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("unfiltered client did not receive station event")
	}

	// The bar display must not see grill tickets.
	select {
	case <-barDisplay.send:
		t.Fatal("bar display should not receive grill tickets")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message received
	}
}

func TestEventSerialization(t *testing.T) {
	testCases := []struct {
		name  string
		event Event
	}{
		{
			name: "order created event",
			event: Event{
				Type:    EventOrderCreated,
				Payload: json.RawMessage(`{"order_number":"TVL-001","total_amount":"47.00"}`),
			},
		},
		{
			name: "order updated event",
			event: Event{
				Type:    EventOrderUpdated,
				Payload: json.RawMessage(`{"order_number":"TVL-001","status":"COMPLETED"}`),
			},
		},
		{
			name: "ticket fired event",
			event: Event{
				Type:    EventTicketFired,
				Station: "GRILL",
				Payload: json.RawMessage(`{"order_number":"TVL-002"}`),
			},
		},
		{
			name: "line status event",
			event: Event{
				Type:    EventLineStatus,
				Payload: json.RawMessage(`{"line_id":"abc","status":"READY"}`),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.event)
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}

			var decoded Event
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}

			if decoded.Type != tc.event.Type {
				t.Errorf("Type mismatch: got %s, want %s", decoded.Type, tc.event.Type)
			}
			if decoded.Station != tc.event.Station {
				t.Errorf("Station mismatch: got %s, want %s", decoded.Station, tc.event.Station)
			}
			if string(decoded.Payload) != string(tc.event.Payload) {
				t.Errorf("Payload mismatch: got %s, want %s", decoded.Payload, tc.event.Payload)
			}
		})
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	outletID := uuid.New()
	client1 := mockClient(hub, outletID, "")
	client2 := mockClient(hub, outletID, "")

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[outletID]) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(hub.rooms[outletID]))
	}
	hub.mu.RUnlock()

	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[outletID]) != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", len(hub.rooms[outletID]))
	}
	hub.mu.RUnlock()

	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if hub.rooms[outletID] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
	hub.mu.RUnlock()
}

func TestBroadcastToNonExistentOutlet(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	outlet1 := uuid.New()
	client1 := mockClient(hub, outlet1, "")
	hub.register <- client1
	time.Sleep(10 * time.Millisecond)

	// Broadcast to an outlet with no connected clients
	outlet2 := uuid.New()
	event := Event{
		Type:    EventOrderCreated,
		Payload: json.RawMessage(`{"test":"data"}`),
	}
	hub.BroadcastToOutlet(outlet2, event)

	// client1 should NOT receive anything
	select {
	case <-client1.send:
		t.Fatal("client should not receive message for different outlet")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message
	}
}

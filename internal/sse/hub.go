package sse

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one message pushed to subscribed SSE clients
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Client is one connected subscriber. Events arrive on Events; a nil
// filter receives every type.
type Client struct {
	ID     string
	Events chan Event
	filter map[string]bool
}

func (c *Client) wants(eventType string) bool {
	return c.filter == nil || c.filter[eventType]
}

// Hub fans progression events out to connected clients. Delivery is
// non-blocking per client: a subscriber that stops draining its buffer
// loses events, it never stalls the award path feeding the hub.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	closed  bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Start is kept for symmetry with the other long-lived components; the
// hub itself needs no background goroutine.
func (h *Hub) Start() {}

// Stop disconnects every client and refuses further registrations
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, client := range h.clients {
		close(client.Events)
		delete(h.clients, id)
	}
}

// Register connects a new client. A non-empty eventTypes list restricts
// delivery to those types; empty means everything.
func (h *Hub) Register(eventTypes []string) *Client {
	client := &Client{
		ID:     uuid.NewString(),
		Events: make(chan Event, ClientEventBuffer),
	}
	if len(eventTypes) > 0 {
		client.filter = make(map[string]bool, len(eventTypes))
		for _, t := range eventTypes {
			client.filter[t] = true
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		// A client handed out after shutdown reads as already disconnected
		close(client.Events)
		return client
	}
	h.clients[client.ID] = client
	return client
}

// Unregister disconnects one client by ID
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
	}
}

// Broadcast delivers an event to every client whose filter matches it.
// A full client buffer drops the event for that client only.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !client.wants(eventType) {
			continue
		}
		select {
		case client.Events <- event:
		default:
		}
	}
}

// ClientCount reports how many clients are connected
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// FormatSSEMessage renders one event in the SSE wire format
func FormatSSEMessage(event Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.WriteString("id: ")
	b.WriteString(event.ID)
	b.WriteString("\nevent: ")
	b.WriteString(event.Type)
	b.WriteString("\ndata: ")
	b.Write(data)
	b.WriteString("\n\n")
	return b.Bytes(), nil
}

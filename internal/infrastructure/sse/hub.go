// Package sse fans committed room events out to local real-time
// subscribers. It implements room.Notifier; delivery is fire-and-forget and
// slow subscribers drop messages rather than stalling the engine.
package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fedroom/fedroom/internal/domain/room"
)

// Client is one subscriber connection. RoomIDs filters delivery; an empty
// list subscribes to every room.
type Client struct {
	ClientID    string
	UserID      string
	RoomIDs     []string
	ConnectedAt time.Time
	MessageChan chan *Message
}

// NewClient creates a subscriber with a buffered delivery channel.
func NewClient(userID string, roomIDs []string) *Client {
	return &Client{
		ClientID:    uuid.NewString(),
		UserID:      userID,
		RoomIDs:     roomIDs,
		ConnectedAt: time.Now().UTC(),
		MessageChan: make(chan *Message, 100),
	}
}

// Close closes the client's message channel.
func (c *Client) Close() {
	close(c.MessageChan)
}

// Message is one committed room event with its sequence id.
type Message struct {
	ID         string          `json:"id"`
	RoomID     string          `json:"roomId"`
	SequenceID int64           `json:"sequenceId"`
	Event      json.RawMessage `json:"event"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Hub manages subscriber clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ClientID] = client
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[clientID]; ok {
		c.Close()
		delete(h.clients, clientID)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// OnNewEvent implements room.Notifier.
func (h *Hub) OnNewEvent(event *room.Event, sequenceID int64) {
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	msg := &Message{
		ID:         uuid.NewString(),
		RoomID:     event.RoomID,
		SequenceID: sequenceID,
		Event:      raw,
		Timestamp:  time.Now().UTC(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if subscribed(c, event.RoomID) {
			trySend(c, msg)
		}
	}
}

// Stop closes every client.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.Close()
		delete(h.clients, id)
	}
}

func subscribed(c *Client, roomID string) bool {
	if len(c.RoomIDs) == 0 {
		return true
	}
	for _, id := range c.RoomIDs {
		if id == roomID {
			return true
		}
	}
	return false
}

func trySend(c *Client, msg *Message) bool {
	select {
	case c.MessageChan <- msg:
		return true
	default:
		return false
	}
}

package ws

import (
	"encoding/json"
	"sync"

	"chat-relay-demo/backend/internal/metrics"
	"chat-relay-demo/backend/internal/models"
	"chat-relay-demo/backend/pkg/logger"
)

// Event is the envelope for every frame on the realtime channel, in both
// directions.
type Event struct {
	Type      string                  `json:"type"`
	SessionID string                  `json:"sessionId,omitempty"`
	Message   string                  `json:"message,omitempty"`
	Data      *models.MessageResponse `json:"data,omitempty"`
}

// Event types.
const (
	EventConnected  = "connected"
	EventJoin       = "join"
	EventJoined     = "joined"
	EventLeave      = "leave"
	EventLeft       = "left"
	EventNewMessage = "new_message"
	EventError      = "error"
)

// Hub tracks connected clients and their room memberships, and fans
// persisted messages out to the members of a session's room. Membership
// mutation is serialized by a single mutex; fan-out never blocks on a slow
// client.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	log *logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
		log:     log.WithComponent("ws_hub"),
	}
}

// Register adds a connected client. It must be called before the client's
// pumps start so join events always see a registered client.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	h.log.Debug("Client registered", "client_id", client.ID)
}

// Unregister tears the client down and clears all of its room memberships.
// Safe to call more than once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.teardownLocked(client)
}

// Join adds the client to the room for sessionID. A client may be in any
// number of rooms at once.
func (h *Hub) Join(client *Client, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}

	room, ok := h.rooms[sessionID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[sessionID] = room
	}
	room[client] = true
	client.rooms[sessionID] = true

	metrics.RoomJoins.Inc()
	h.log.Debug("Client joined room", "client_id", client.ID, "session_id", sessionID)
}

// Leave removes the client from the room for sessionID. Leaving a room the
// client never joined is a no-op.
func (h *Hub) Leave(client *Client, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(client, sessionID)
	h.log.Debug("Client left room", "client_id", client.ID, "session_id", sessionID)
}

// Publish delivers message to every current member of the session's room, at
// most once each. Clients that cannot accept the frame are torn down rather
// than blocking the fan-out. Subscribers joining afterwards never see this
// event: there is no backlog.
func (h *Hub) Publish(sessionID string, message *models.MessageResponse) {
	payload, err := json.Marshal(Event{
		Type:      EventNewMessage,
		SessionID: sessionID,
		Data:      message,
	})
	if err != nil {
		h.log.LogError(err, "Failed to encode broadcast", "session_id", sessionID)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[sessionID]
	if len(room) == 0 {
		return
	}

	for client := range room {
		select {
		case client.Send <- payload:
			metrics.MessagesBroadcast.Inc()
		default:
			// Slow or dead connection: drop it, never the other subscribers.
			h.teardownLocked(client)
			h.log.Warn("Client removed due to blocked channel", "client_id", client.ID)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// RoomSize returns the current membership count for a session's room.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[sessionID])
}

func (h *Hub) teardownLocked(client *Client) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	for sessionID := range client.rooms {
		h.leaveLocked(client, sessionID)
	}
	// Closing the connection (not the Send channel) ends both pumps without
	// risking a send on a closed channel from a concurrent publish.
	if client.conn != nil {
		client.conn.Close()
	}
	metrics.WSConnections.Dec()
	h.log.Debug("Client unregistered", "client_id", client.ID)
}

func (h *Hub) leaveLocked(client *Client, sessionID string) {
	if room, ok := h.rooms[sessionID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, sessionID)
		}
	}
	delete(client.rooms, sessionID)
}

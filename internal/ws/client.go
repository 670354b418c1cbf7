package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"chat-relay-demo/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// Client is one live realtime connection. The hub owns registration and room
// membership; the client owns its connection and pumps.
type Client struct {
	ID   string
	Send chan []byte

	hub  *Hub
	conn *websocket.Conn
	log  *logger.Logger

	// rooms is this client's subscription set, mutated only under the hub's
	// lock.
	rooms map[string]bool
}

// NewClient creates a client for an accepted websocket connection.
func NewClient(hub *Hub, conn *websocket.Conn, log *logger.Logger) *Client {
	return &Client{
		ID:    uuid.New().String(),
		Send:  make(chan []byte, 64),
		hub:   hub,
		conn:  conn,
		log:   log,
		rooms: make(map[string]bool),
	}
}

// Handler returns the gin handler that upgrades requests on the realtime
// endpoint and runs the connection's pumps.
func Handler(hub *Hub, log *logger.Logger) gin.HandlerFunc {
	wsLog := log.WithComponent("ws")
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			wsLog.LogError(err, "Websocket upgrade failed")
			return
		}

		client := NewClient(hub, conn, wsLog)
		hub.Register(client)

		go client.writePump()
		go client.readPump()

		client.sendEvent(Event{Type: EventConnected, Message: "Connected to chat relay"})
	}
}

// readPump reads events from the connection until it drops, then unregisters
// the client, which also clears its room memberships.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug("Websocket closed unexpectedly", "client_id", c.ID, "error", err.Error())
			}
			break
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			c.sendEvent(Event{Type: EventError, Message: "Invalid event payload"})
			continue
		}

		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event Event) {
	switch event.Type {
	case EventJoin:
		if event.SessionID == "" {
			c.sendEvent(Event{Type: EventError, Message: "sessionId is required"})
			return
		}
		c.hub.Join(c, event.SessionID)
		c.sendEvent(Event{Type: EventJoined, SessionID: event.SessionID})

	case EventLeave:
		if event.SessionID == "" {
			c.sendEvent(Event{Type: EventError, Message: "sessionId is required"})
			return
		}
		c.hub.Leave(c, event.SessionID)
		c.sendEvent(Event{Type: EventLeft, SessionID: event.SessionID})

	default:
		c.sendEvent(Event{Type: EventError, Message: "Unknown event type"})
	}
}

// writePump forwards queued frames to the connection and keeps it alive with
// pings. The pump ends when a write fails, which includes the hub closing the
// connection during teardown.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendEvent(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.Send <- payload:
	default:
	}
}

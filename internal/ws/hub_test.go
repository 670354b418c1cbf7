package ws

import (
	"encoding/json"
	"io"
	"testing"

	"chat-relay-demo/backend/internal/models"
	"chat-relay-demo/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(logger.New(logger.Config{Level: "error", Output: io.Discard}))
}

// newTestClient registers a client with no underlying connection; frames land
// in its Send channel.
func newTestClient(t *testing.T, hub *Hub) *Client {
	t.Helper()
	client := NewClient(hub, nil, hub.log)
	hub.Register(client)
	return client
}

func testMessage(messageID string) *models.MessageResponse {
	return &models.MessageResponse{
		MessageID: messageID,
		SessionID: "sess-1",
		Content:   "hello",
		Timestamp: "2023-06-15T14:30:00Z",
		Sender:    "user",
	}
}

func receiveEvent(t *testing.T, client *Client) Event {
	t.Helper()
	select {
	case payload := <-client.Send:
		var event Event
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	default:
		t.Fatal("expected a frame in the send queue")
		return Event{}
	}
}

func TestJoinAndPublish(t *testing.T) {
	hub := newTestHub(t)
	member := newTestClient(t, hub)
	outsider := newTestClient(t, hub)

	hub.Join(member, "sess-1")
	hub.Join(outsider, "sess-2")
	assert.Equal(t, 1, hub.RoomSize("sess-1"))

	hub.Publish("sess-1", testMessage("msg-1"))

	event := receiveEvent(t, member)
	assert.Equal(t, EventNewMessage, event.Type)
	assert.Equal(t, "sess-1", event.SessionID)
	require.NotNil(t, event.Data)
	assert.Equal(t, "msg-1", event.Data.MessageID)

	// Only members of the session's room receive the frame.
	assert.Empty(t, outsider.Send)
}

func TestPublishToEmptyRoom(t *testing.T) {
	hub := newTestHub(t)

	// No subscribers is not an error.
	hub.Publish("sess-1", testMessage("msg-1"))
	assert.Equal(t, 0, hub.RoomSize("sess-1"))
}

func TestPublishAfterLeave(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(t, hub)

	hub.Join(client, "sess-1")
	hub.Leave(client, "sess-1")
	hub.Publish("sess-1", testMessage("msg-1"))

	assert.Empty(t, client.Send)
	assert.Equal(t, 0, hub.RoomSize("sess-1"))
}

func TestClientInMultipleRooms(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(t, hub)

	hub.Join(client, "sess-1")
	hub.Join(client, "sess-2")

	hub.Publish("sess-1", testMessage("msg-1"))
	hub.Publish("sess-2", testMessage("msg-2"))

	first := receiveEvent(t, client)
	second := receiveEvent(t, client)
	assert.Equal(t, "msg-1", first.Data.MessageID)
	assert.Equal(t, "msg-2", second.Data.MessageID)
}

func TestUnregisterClearsMemberships(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(t, hub)

	hub.Join(client, "sess-1")
	hub.Unregister(client)

	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, 0, hub.RoomSize("sess-1"))

	// Idempotent.
	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestJoinRequiresRegisteredClient(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient(hub, nil, hub.log)

	hub.Join(client, "sess-1")
	assert.Equal(t, 0, hub.RoomSize("sess-1"))
}

func TestBlockedClientIsDropped(t *testing.T) {
	hub := newTestHub(t)
	blocked := newTestClient(t, hub)
	healthy := newTestClient(t, hub)

	hub.Join(blocked, "sess-1")
	hub.Join(healthy, "sess-1")

	// Fill the blocked client's queue so the next frame cannot be accepted.
	for i := 0; i < cap(blocked.Send); i++ {
		blocked.Send <- []byte("{}")
	}

	hub.Publish("sess-1", testMessage("msg-1"))

	// The blocked client is torn down; the healthy one still got the frame.
	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, 1, hub.RoomSize("sess-1"))
	event := receiveEvent(t, healthy)
	assert.Equal(t, "msg-1", event.Data.MessageID)
}

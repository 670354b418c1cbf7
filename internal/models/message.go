package models

// Message is the stored representation of a chat message. Rows are
// append-only: the ingestion pipeline creates them and nothing updates or
// deletes them. The auto-increment ID records commit order within a session;
// MessageID is the client-supplied identity key guarded by a unique index.
type Message struct {
	ID             uint   `gorm:"primaryKey" json:"-"`
	MessageID      string `gorm:"uniqueIndex;size:100;not null" json:"messageId"`
	SessionID      string `gorm:"index;size:100;not null" json:"sessionId"`
	Content        string `gorm:"type:text;not null" json:"content"`
	Timestamp      string `gorm:"size:50;not null" json:"timestamp"`
	Sender         string `gorm:"size:20;not null" json:"sender"`
	WordCount      int    `gorm:"not null" json:"-"`
	CharacterCount int    `gorm:"not null" json:"-"`
	ProcessedAt    string `gorm:"size:50;not null" json:"-"`
}

// MessageMetadata groups the server-derived fields in API responses.
type MessageMetadata struct {
	WordCount      int    `json:"wordCount"`
	CharacterCount int    `json:"characterCount"`
	ProcessedAt    string `json:"processedAt"`
}

// MessageResponse is the wire representation of a persisted message, used by
// both the REST endpoints and the websocket new_message event.
type MessageResponse struct {
	MessageID string          `json:"messageId"`
	SessionID string          `json:"sessionId"`
	Content   string          `json:"content"`
	Timestamp string          `json:"timestamp"`
	Sender    string          `json:"sender"`
	Metadata  MessageMetadata `json:"metadata"`
}

// ToResponse converts a stored message to its wire representation.
func (m *Message) ToResponse() *MessageResponse {
	return &MessageResponse{
		MessageID: m.MessageID,
		SessionID: m.SessionID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		Sender:    m.Sender,
		Metadata: MessageMetadata{
			WordCount:      m.WordCount,
			CharacterCount: m.CharacterCount,
			ProcessedAt:    m.ProcessedAt,
		},
	}
}

// Valid sender values.
const (
	SenderUser   = "user"
	SenderSystem = "system"
)

// ValidSenders lists the accepted sender values.
var ValidSenders = []string{SenderUser, SenderSystem}

// IsValidSender reports whether s is an accepted sender value.
func IsValidSender(s string) bool {
	return s == SenderUser || s == SenderSystem
}

package domain

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// MessageID is a value object for chat-message identity.
type MessageID struct{ ulid.ULID }

// NewMessageID generates a fresh MessageID.
func NewMessageID() MessageID { return MessageID{ULID: ulid.Make()} }

// ParseMessageID parses the canonical 26-character form.
func ParseMessageID(s string) (MessageID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return MessageID{}, fmt.Errorf("parse message id: %w", err)
	}
	return MessageID{ULID: id}, nil
}

// String returns the canonical string form.
func (m MessageID) String() string { return m.ULID.String() }

// ChatMessage is a direct message between two users.
type ChatMessage struct {
	ID         MessageID
	SenderID   UserID
	ReceiverID UserID
	Content    string
	Timestamp  time.Time
	IsRead     bool
}

// NewChatMessage builds an unread message from sender to receiver.
func NewChatMessage(senderID, receiverID UserID, content string) *ChatMessage {
	return &ChatMessage{
		ID:         NewMessageID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now().UTC(),
	}
}

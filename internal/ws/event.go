package ws

import (
	"time"

	"github.com/tastelog/tastelog-backend/internal/domain"
)

// Event types pushed to clients
const (
	EventNewMessage          = "new_message"
	EventMessagesRead        = "messages_read"
	EventConversationUpdated = "conversation_updated"
)

// Close code sent when the connect token fails verification.
const CloseAuthFailure = 4401

// Event is the wire envelope for every realtime push.
type Event struct {
	Type    string      `json:"type"`    // "new_message", "messages_read", "conversation_updated"
	Payload interface{} `json:"payload"` // event-specific data
}

// NewMessagePayload notifies the other participant of a persisted message.
type NewMessagePayload struct {
	ConversationID string          `json:"conversation_id"`
	SenderID       string          `json:"sender_id"`
	Message        *domain.Message `json:"message"`
}

// MessagesReadPayload notifies the sender that their messages were read.
type MessagesReadPayload struct {
	ConversationID string    `json:"conversation_id"`
	ReadAt         time.Time `json:"read_at"`
}

// ConversationUpdatedPayload notifies the requester of a status change.
type ConversationUpdatedPayload struct {
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
}

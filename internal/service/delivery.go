package service

import (
	"time"

	"github.com/tastelog/tastelog-backend/internal/domain"
	"github.com/tastelog/tastelog-backend/internal/ws"
)

// Pusher delivers an event to every open connection of a user. Implemented by
// ws.Hub; a pub/sub backend can replace it without touching the state machine.
type Pusher interface {
	SendToUser(userID string, event *ws.Event)
}

// Notifier is invoked by the conversation service after a successful state
// mutation. Delivery is fire-and-forget: an offline recipient simply misses
// the push and reconciles on the next fetch.
type Notifier interface {
	MessageCreated(conv *domain.Conversation, msg *domain.Message)
	ConversationAccepted(conv *domain.Conversation)
	MessagesRead(conv *domain.Conversation, readerID string, readAt time.Time)
}

// DeliveryCoordinator translates completed mutations into push events
// addressed to the affected peer.
type DeliveryCoordinator struct {
	pusher Pusher
}

// NewDeliveryCoordinator creates a DeliveryCoordinator over a Pusher.
func NewDeliveryCoordinator(pusher Pusher) *DeliveryCoordinator {
	return &DeliveryCoordinator{pusher: pusher}
}

// MessageCreated pushes a new_message event to the participant who did not
// send the message.
func (d *DeliveryCoordinator) MessageCreated(conv *domain.Conversation, msg *domain.Message) {
	recipient := conv.OtherParticipant(msg.SenderID)
	d.pusher.SendToUser(recipient, &ws.Event{
		Type: ws.EventNewMessage,
		Payload: ws.NewMessagePayload{
			ConversationID: conv.ID,
			SenderID:       msg.SenderID,
			Message:        msg,
		},
	})
}

// ConversationAccepted pushes a conversation_updated event to the original
// requester. Declines emit no event; the requester discovers a decline on the
// next list fetch.
func (d *DeliveryCoordinator) ConversationAccepted(conv *domain.Conversation) {
	if conv.RequestedByID == nil {
		return
	}
	d.pusher.SendToUser(*conv.RequestedByID, &ws.Event{
		Type: ws.EventConversationUpdated,
		Payload: ws.ConversationUpdatedPayload{
			ConversationID: conv.ID,
			Status:         conv.Status,
		},
	})
}

// MessagesRead pushes a messages_read event to the participant whose sent
// messages were just read, so their client can show read receipts.
func (d *DeliveryCoordinator) MessagesRead(conv *domain.Conversation, readerID string, readAt time.Time) {
	other := conv.OtherParticipant(readerID)
	d.pusher.SendToUser(other, &ws.Event{
		Type: ws.EventMessagesRead,
		Payload: ws.MessagesReadPayload{
			ConversationID: conv.ID,
			ReadAt:         readAt,
		},
	})
}

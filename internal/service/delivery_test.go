package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tastelog/tastelog-backend/internal/domain"
	"github.com/tastelog/tastelog-backend/internal/ws"
)

type fakePusher struct {
	pushes []struct {
		userID string
		event  *ws.Event
	}
}

func (p *fakePusher) SendToUser(userID string, event *ws.Event) {
	p.pushes = append(p.pushes, struct {
		userID string
		event  *ws.Event
	}{userID, event})
}

func activePair() *domain.Conversation {
	req := "alice"
	return &domain.Conversation{
		ID:             "conv-1",
		Participant1ID: "alice",
		Participant2ID: "zoe",
		Status:         domain.ConversationActive,
		RequestedByID:  &req,
	}
}

func TestMessageCreatedTargetsOtherParticipant(t *testing.T) {
	pusher := &fakePusher{}
	d := NewDeliveryCoordinator(pusher)

	msg := &domain.Message{ID: "m1", ConversationID: "conv-1", SenderID: "alice", Body: "hi"}
	d.MessageCreated(activePair(), msg)

	require.Len(t, pusher.pushes, 1)
	assert.Equal(t, "zoe", pusher.pushes[0].userID)
	assert.Equal(t, ws.EventNewMessage, pusher.pushes[0].event.Type)

	payload := pusher.pushes[0].event.Payload.(ws.NewMessagePayload)
	assert.Equal(t, "conv-1", payload.ConversationID)
	assert.Equal(t, "alice", payload.SenderID)
	assert.Equal(t, "m1", payload.Message.ID)
}

func TestConversationAcceptedTargetsRequester(t *testing.T) {
	pusher := &fakePusher{}
	d := NewDeliveryCoordinator(pusher)

	d.ConversationAccepted(activePair())

	require.Len(t, pusher.pushes, 1)
	assert.Equal(t, "alice", pusher.pushes[0].userID)
	assert.Equal(t, ws.EventConversationUpdated, pusher.pushes[0].event.Type)

	payload := pusher.pushes[0].event.Payload.(ws.ConversationUpdatedPayload)
	assert.Equal(t, domain.ConversationActive, payload.Status)
}

func TestConversationAcceptedWithoutRequesterIsNoOp(t *testing.T) {
	pusher := &fakePusher{}
	d := NewDeliveryCoordinator(pusher)

	conv := activePair()
	conv.RequestedByID = nil
	d.ConversationAccepted(conv)

	assert.Empty(t, pusher.pushes)
}

func TestMessagesReadTargetsNonReader(t *testing.T) {
	pusher := &fakePusher{}
	d := NewDeliveryCoordinator(pusher)

	readAt := time.Now()
	d.MessagesRead(activePair(), "zoe", readAt)

	require.Len(t, pusher.pushes, 1)
	assert.Equal(t, "alice", pusher.pushes[0].userID)

	payload := pusher.pushes[0].event.Payload.(ws.MessagesReadPayload)
	assert.Equal(t, "conv-1", payload.ConversationID)
	assert.True(t, payload.ReadAt.Equal(readAt))
}

// Events must serialize to the documented {type, payload} envelope.
func TestEventWireShape(t *testing.T) {
	event := &ws.Event{
		Type: ws.EventNewMessage,
		Payload: ws.NewMessagePayload{
			ConversationID: "conv-1",
			SenderID:       "alice",
			Message:        &domain.Message{ID: "m1", ConversationID: "conv-1", SenderID: "alice", Body: "hi"},
		},
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "type")
	assert.Contains(t, decoded, "payload")

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded["payload"], &payload))
	assert.Contains(t, payload, "conversation_id")
	assert.Contains(t, payload, "sender_id")
	assert.Contains(t, payload, "message")
}

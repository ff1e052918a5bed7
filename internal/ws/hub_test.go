package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func receiveEvent(t *testing.T, c *Client) *Event {
	t.Helper()
	select {
	case data := <-c.send:
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		return &event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestPushReachesAllConnectionsOfUser(t *testing.T) {
	hub := startHub(t)

	// Two tabs for alice, one for bob
	alice1 := NewClient(hub, nil, "alice")
	alice2 := NewClient(hub, nil, "alice")
	bob := NewClient(hub, nil, "bob")
	hub.Register(alice1)
	hub.Register(alice2)
	hub.Register(bob)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount("alice") == 2 && hub.ConnectionCount("bob") == 1
	}, time.Second, 5*time.Millisecond)

	hub.SendToUser("alice", &Event{Type: EventNewMessage, Payload: map[string]string{"conversation_id": "c1"}})

	for _, c := range []*Client{alice1, alice2} {
		event := receiveEvent(t, c)
		assert.Equal(t, EventNewMessage, event.Type)
	}

	// The broadcast has been fully processed once both alice clients got it,
	// so bob's channel can be checked without waiting
	select {
	case <-bob.send:
		t.Fatal("bob received an event addressed to alice")
	default:
	}
}

func TestUnregisterRemovesEmptyEntry(t *testing.T) {
	hub := startHub(t)

	c1 := NewClient(hub, nil, "alice")
	c2 := NewClient(hub, nil, "alice")
	hub.Register(c1)
	hub.Register(c2)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount("alice") == 2
	}, time.Second, 5*time.Millisecond)

	hub.Unregister(c1)
	require.Eventually(t, func() bool {
		return hub.ConnectionCount("alice") == 1
	}, time.Second, 5*time.Millisecond)

	// Remaining connection still receives pushes
	hub.SendToUser("alice", &Event{Type: EventMessagesRead, Payload: map[string]string{"conversation_id": "c1"}})
	event := receiveEvent(t, c2)
	assert.Equal(t, EventMessagesRead, event.Type)

	hub.Unregister(c2)
	require.Eventually(t, func() bool {
		return hub.ConnectionCount("alice") == 0
	}, time.Second, 5*time.Millisecond)
}

func TestUnregisterUnknownClientIsSafe(t *testing.T) {
	hub := startHub(t)

	c := NewClient(hub, nil, "alice")
	hub.Register(c)
	require.Eventually(t, func() bool {
		return hub.ConnectionCount("alice") == 1
	}, time.Second, 5*time.Millisecond)

	hub.Unregister(c)
	// Second unregister of the same client is a no-op
	hub.Unregister(c)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount("alice") == 0
	}, time.Second, 5*time.Millisecond)
}

func TestPushToOfflineUserIsDropped(t *testing.T) {
	hub := startHub(t)

	// Must not panic or block; there is no store-and-forward queue
	hub.SendToUser("ghost", &Event{Type: EventConversationUpdated, Payload: map[string]string{"conversation_id": "c1"}})

	assert.Equal(t, 0, hub.ConnectionCount("ghost"))
}

func TestRegisterSameClientTwiceIsIdempotent(t *testing.T) {
	hub := startHub(t)

	c := NewClient(hub, nil, "alice")
	hub.Register(c)
	hub.Register(c)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount("alice") == 1
	}, time.Second, 5*time.Millisecond)

	hub.SendToUser("alice", &Event{Type: EventNewMessage, Payload: map[string]string{"conversation_id": "c1"}})
	receiveEvent(t, c)

	// Exactly one delivery for one connection
	select {
	case <-c.send:
		t.Fatal("duplicate delivery to a client registered twice")
	default:
	}
}

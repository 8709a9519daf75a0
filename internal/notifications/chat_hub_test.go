package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvent(t *testing.T, client *Client) ChatEvent {
	t.Helper()
	select {
	case raw := <-client.Send:
		var event ChatEvent
		require.NoError(t, json.Unmarshal(raw, &event))
		return event
	default:
		t.Fatal("no event queued for client")
		return ChatEvent{}
	}
}

func TestChatHub_RegisterUnregister(t *testing.T) {
	hub := NewChatHub()

	client, err := hub.Register(1, nil)
	require.NoError(t, err)

	hub.mu.RLock()
	assert.Len(t, hub.userConns[1], 1)
	hub.mu.RUnlock()

	hub.UnregisterClient(client)
	hub.mu.RLock()
	assert.Empty(t, hub.userConns[1])
	hub.mu.RUnlock()

	// double unregister is ignored
	hub.UnregisterClient(client)

	_ = hub.Shutdown(context.Background())
}

func TestChatHub_ConnectionCeiling(t *testing.T) {
	hub := NewChatHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(7, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(7, nil)
	assert.Error(t, err)

	// other users are unaffected
	_, err = hub.Register(8, nil)
	assert.NoError(t, err)

	_ = hub.Shutdown(context.Background())
}

func TestChatHub_BroadcastToChat(t *testing.T) {
	hub := NewChatHub()

	member, err := hub.Register(1, nil)
	require.NoError(t, err)
	outsider, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.JoinChat(member, 101)
	assert.Equal(t, 1, hub.ActiveInChat(101))

	hub.BroadcastToChat(101, ChatEvent{Type: EventNewMessage, ChatID: 101, Payload: "hello"})

	event := readEvent(t, member)
	assert.Equal(t, EventNewMessage, event.Type)
	assert.Equal(t, uint(101), event.ChatID)

	select {
	case <-outsider.Send:
		t.Error("outsider must not receive room events")
	default:
	}

	_ = hub.Shutdown(context.Background())
}

func TestChatHub_LeaveChat(t *testing.T) {
	hub := NewChatHub()

	client, err := hub.Register(1, nil)
	require.NoError(t, err)
	hub.JoinChat(client, 5)
	hub.LeaveChat(client, 5)

	assert.Equal(t, 0, hub.ActiveInChat(5))
	hub.BroadcastToChat(5, ChatEvent{Type: EventNewMessage, ChatID: 5})
	select {
	case <-client.Send:
		t.Error("client left the chat and must not receive events")
	default:
	}

	_ = hub.Shutdown(context.Background())
}

func TestChatHub_MultiDevice(t *testing.T) {
	hub := NewChatHub()
	userID := uint(42)

	phone, err := hub.Register(userID, nil)
	require.NoError(t, err)
	laptop, err := hub.Register(userID, nil)
	require.NoError(t, err)

	hub.JoinChat(phone, 9)
	hub.JoinChat(laptop, 9)

	hub.BroadcastToChat(9, ChatEvent{Type: EventNewMessage, ChatID: 9})

	readEvent(t, phone)
	readEvent(t, laptop)

	// dropping one device keeps the other subscribed
	hub.UnregisterClient(phone)
	hub.BroadcastToChat(9, ChatEvent{Type: EventNewMessage, ChatID: 9})
	readEvent(t, laptop)

	_ = hub.Shutdown(context.Background())
}

func TestChatHub_UnregisterCleansRooms(t *testing.T) {
	hub := NewChatHub()

	client, err := hub.Register(1, nil)
	require.NoError(t, err)
	hub.JoinChat(client, 11)
	hub.JoinChat(client, 12)

	hub.UnregisterClient(client)

	assert.Equal(t, 0, hub.ActiveInChat(11))
	assert.Equal(t, 0, hub.ActiveInChat(12))
	hub.mu.RLock()
	assert.Empty(t, hub.rooms)
	assert.Empty(t, hub.clientRooms)
	hub.mu.RUnlock()
}

func TestClient_TrySend_DropsWhenFull(t *testing.T) {
	hub := NewChatHub()
	client, err := hub.Register(1, nil)
	require.NoError(t, err)

	for i := 0; i < cap(client.Send); i++ {
		client.TrySend([]byte(`{"type":"new_message"}`))
	}
	// buffer is full now; the next send is dropped and replaced by nothing
	// (the drop notice also needs buffer space)
	client.TrySend([]byte(`{"type":"new_message"}`))

	assert.Len(t, client.Send, cap(client.Send))
}

func TestChatHub_ShutdownResetsState(t *testing.T) {
	hub := NewChatHub()
	client, err := hub.Register(1, nil)
	require.NoError(t, err)
	hub.JoinChat(client, 3)

	require.NoError(t, hub.Shutdown(context.Background()))

	hub.mu.RLock()
	assert.Empty(t, hub.userConns)
	assert.Empty(t, hub.rooms)
	hub.mu.RUnlock()
}

package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/websocket/v2"

	"worklane/internal/middleware"
	"worklane/internal/observability"
)

// Event types delivered over the chat websocket.
const (
	EventNewMessage      = "new_message"
	EventJoined          = "joined"
	EventLeft            = "left"
	EventError           = "error"
	EventServerShutdown  = "server_shutdown"
	EventMessagesDropped = "messages_dropped"
)

// ChatEvent is the frame exchanged with websocket clients and mirrored over
// Redis.
type ChatEvent struct {
	Type    string `json:"type"`
	ChatID  uint   `json:"chat_id,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// ChatHub fans chat events out to websocket clients. It is room-centric: a
// client only receives events for the chats it has joined.
type ChatHub struct {
	mu sync.RWMutex

	// chatID -> clients subscribed to that chat
	rooms map[uint]map[*Client]struct{}

	// userID -> that user's active clients
	userConns map[uint]map[*Client]struct{}

	// client -> chats it has joined
	clientRooms map[*Client]map[uint]struct{}
}

func NewChatHub() *ChatHub {
	return &ChatHub{
		rooms:       make(map[uint]map[*Client]struct{}),
		userConns:   make(map[uint]map[*Client]struct{}),
		clientRooms: make(map[*Client]map[uint]struct{}),
	}
}

func (h *ChatHub) Name() string { return "chat hub" }

// Register creates a client for a fresh websocket connection, enforcing the
// per-user connection ceiling.
func (h *ChatHub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.userConns[userID] == nil {
		h.userConns[userID] = make(map[*Client]struct{})
	}
	if len(h.userConns[userID]) >= maxConnsPerUser {
		return nil, fmt.Errorf("user %d connection limit reached", userID)
	}

	client := NewClient(h, conn, userID)
	h.userConns[userID][client] = struct{}{}
	h.clientRooms[client] = make(map[uint]struct{})
	observability.ActiveWebSockets.Inc()

	middleware.Logger.Debug("chat hub registered client",
		"user_id", userID, "active_clients", len(h.userConns[userID]))
	return client, nil
}

// UnregisterClient drops a client and its room subscriptions.
func (h *ChatHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.userConns[client.UserID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.userConns, client.UserID)
	}

	for chatID := range h.clientRooms[client] {
		if room, ok := h.rooms[chatID]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, chatID)
			}
		}
	}
	delete(h.clientRooms, client)
	observability.ActiveWebSockets.Dec()

	middleware.Logger.Debug("chat hub unregistered client", "user_id", client.UserID)
}

// JoinChat subscribes the client to a chat's events. Access control happens
// before this is called.
func (h *ChatHub) JoinChat(client *Client, chatID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clientRooms[client]; !ok {
		return
	}
	if h.rooms[chatID] == nil {
		h.rooms[chatID] = make(map[*Client]struct{})
	}
	h.rooms[chatID][client] = struct{}{}
	h.clientRooms[client][chatID] = struct{}{}
}

// LeaveChat unsubscribes the client from a chat's events.
func (h *ChatHub) LeaveChat(client *Client, chatID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[chatID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, chatID)
		}
	}
	if rooms, ok := h.clientRooms[client]; ok {
		delete(rooms, chatID)
	}
}

// BroadcastToChat delivers an event to every client subscribed to the chat.
func (h *ChatHub) BroadcastToChat(chatID uint, event ChatEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[chatID]
	if !ok || len(room) == 0 {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		middleware.Logger.Error("marshaling chat event failed", "chat_id", chatID, "error", err)
		return
	}
	for client := range room {
		client.TrySend(payload)
	}
	observability.ChatMessagesRelayed.WithLabelValues(event.Type).Inc()
}

// ActiveInChat returns how many clients are subscribed to a chat.
func (h *ChatHub) ActiveInChat(chatID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}

// StartWiring connects the hub to the Redis chat subscription. Events arriving
// on chat:room:<id> channels are fanned out to that room's clients.
func (h *ChatHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartChatSubscriber(ctx, func(channel, payload string) {
		var chatID uint
		if _, err := fmt.Sscanf(channel, "chat:room:%d", &chatID); err != nil {
			middleware.Logger.Warn("unexpected chat channel", "channel", channel)
			return
		}

		var event ChatEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			middleware.Logger.Warn("unparseable chat event", "channel", channel, "error", err)
			return
		}
		if event.Type == "" {
			event.Type = EventNewMessage
		}
		event.ChatID = chatID

		h.BroadcastToChat(chatID, event)
	})
}

// Shutdown closes every websocket connection after a courtesy notice.
func (h *ChatHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	notice, _ := json.Marshal(ChatEvent{Type: EventServerShutdown})
	for userID, clients := range h.userConns {
		for client := range clients {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, notice); err != nil {
				middleware.Logger.Debug("shutdown notice failed", "user_id", userID, "error", err)
			}
			_ = client.Conn.Close()
		}
	}

	h.rooms = make(map[uint]map[*Client]struct{})
	h.userConns = make(map[uint]map[*Client]struct{})
	h.clientRooms = make(map[*Client]map[uint]struct{})
	return nil
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"worklane/internal/middleware"
	"worklane/internal/notifications"
)

// wsFrame is the JSON shape clients send on the chat websocket.
type wsFrame struct {
	Type    string `json:"type"`
	ChatID  uint   `json:"chat_id"`
	Content string `json:"content"`
}

// WebSocketChatHandler upgrades an authenticated connection into the chat hub.
// Clients join chats they participate in and receive new_message events fanned
// out from the Redis subscription.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx := context.Background()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		if s.chatHub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":"realtime unavailable"}`))
			_ = conn.Close()
			return
		}

		client, err := s.chatHub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration refused", "user_id", userID, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":"connection limit reached"}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, raw []byte) {
			var frame wsFrame
			if err := json.Unmarshal(raw, &frame); err != nil {
				middleware.Logger.Debug("unparseable websocket frame", "user_id", userID)
				return
			}

			switch frame.Type {
			case "join":
				ok, err := s.chatService.IsParticipant(ctx, userID, frame.ChatID)
				if err != nil || !ok {
					s.sendWSEvent(c, notifications.ChatEvent{
						Type:    notifications.EventError,
						ChatID:  frame.ChatID,
						Payload: "chat not found",
					})
					return
				}
				s.chatHub.JoinChat(c, frame.ChatID)
				s.sendWSEvent(c, notifications.ChatEvent{
					Type:   notifications.EventJoined,
					ChatID: frame.ChatID,
				})

			case "leave":
				s.chatHub.LeaveChat(c, frame.ChatID)
				s.sendWSEvent(c, notifications.ChatEvent{
					Type:   notifications.EventLeft,
					ChatID: frame.ChatID,
				})

			case "message":
				// websocket alternative to the HTTP send endpoint, same limits
				id := fmt.Sprintf("user:%d", userID)
				allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "send_chat", id, 15, time.Minute)
				if !allowed {
					s.sendWSEvent(c, notifications.ChatEvent{
						Type:    notifications.EventError,
						ChatID:  frame.ChatID,
						Payload: "rate limit exceeded",
					})
					return
				}
				if _, err := s.chatService.SendMessage(ctx, userID, frame.ChatID, frame.Content); err != nil {
					s.sendWSEvent(c, notifications.ChatEvent{
						Type:    notifications.EventError,
						ChatID:  frame.ChatID,
						Payload: safeErrorMessage(err),
					})
				}
				// delivery happens through the Redis relay, no direct echo
			}
		}

		go client.WritePump()
		client.ReadPump()
	})
}

func (s *Server) sendWSEvent(c *notifications.Client, event notifications.ChatEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	c.TrySend(payload)
}

package server

import (
	"github.com/gofiber/fiber/v2"

	"worklane/internal/models"
)

type openChatRequest struct {
	User2ID uint `json:"user2Id"`
}

// OpenChat finds or creates the conversation between the caller and another
// user and returns its id.
func (s *Server) OpenChat(c *fiber.Ctx) error {
	var req openChatRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}

	chat, err := s.chatService.OpenChat(c.UserContext(), currentUser(c).ID, req.User2ID)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "chat ready", fiber.Map{
		"chatId": chat.ID,
	})
}

// ListChats lists the caller's conversations, most recently active first.
func (s *Server) ListChats(c *fiber.Ctx) error {
	chats, err := s.chatService.ListChats(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "chats retrieved", fiber.Map{
		"chats": chats,
	})
}

// GetChat returns a conversation with messages in chronological order.
func (s *Server) GetChat(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	chat, err := s.chatService.GetChat(c.UserContext(), currentUser(c).ID, id)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "chat retrieved", fiber.Map{
		"chat": chat,
	})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendChatMessage persists a message and mirrors it to the realtime channel.
func (s *Server) SendChatMessage(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}

	msg, err := s.chatService.SendMessage(c.UserContext(), currentUser(c).ID, id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "message sent", fiber.Map{
		"message": msg,
	})
}

package service

import (
	"context"
	"strings"

	"worklane/internal/middleware"
	"worklane/internal/models"
	"worklane/internal/repository"
)

const maxMessageLen = 5000

// ChatPublisher mirrors a persisted message onto the chat's realtime channel.
type ChatPublisher interface {
	PublishChatMessage(ctx context.Context, chatID uint, msg *models.Message) error
}

type ChatService struct {
	chats     repository.ChatRepository
	users     repository.UserRepository
	publisher ChatPublisher
}

func NewChatService(chats repository.ChatRepository, users repository.UserRepository, publisher ChatPublisher) *ChatService {
	return &ChatService{chats: chats, users: users, publisher: publisher}
}

// OpenChat finds or creates the conversation between the caller and another
// user. There is at most one chat per pair.
func (s *ChatService) OpenChat(ctx context.Context, userID, otherID uint) (*models.Chat, error) {
	if otherID == 0 {
		return nil, models.NewValidationError("user2Id is required")
	}
	if otherID == userID {
		return nil, models.NewValidationError("cannot open a chat with yourself")
	}
	if _, err := s.users.GetByID(ctx, otherID); err != nil {
		return nil, err
	}

	chat, err := s.chats.FindBetween(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if chat != nil {
		return chat, nil
	}
	return s.chats.Create(ctx, userID, otherID)
}

// GetChat returns a conversation with its messages in chronological order.
// Non-participants get the same 404 as a missing chat, so chat ids cannot be
// probed.
func (s *ChatService) GetChat(ctx context.Context, userID, chatID uint) (*models.Chat, error) {
	chat, err := s.chats.GetWithMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, models.NewNotFoundError("chat")
	}
	return chat, nil
}

func (s *ChatService) ListChats(ctx context.Context, userID uint) ([]models.Chat, error) {
	return s.chats.ListForUser(ctx, userID)
}

// SendMessage persists a message and then publishes it to the chat channel.
// The relay is best effort; a pub/sub outage must not fail the write.
func (s *ChatService) SendMessage(ctx context.Context, userID, chatID uint, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("content is required")
	}
	if len(content) > maxMessageLen {
		return nil, models.NewValidationError("message too long (max 5000 characters)")
	}

	chat, err := s.chats.GetParticipants(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, models.NewForbiddenError("you are not a participant of this chat")
	}

	msg := &models.Message{
		ChatID:   chatID,
		SenderID: userID,
		Content:  content,
	}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishChatMessage(ctx, chatID, msg); err != nil {
			middleware.Logger.WarnContext(ctx, "publishing chat message failed",
				"chat_id", chatID, "message_id", msg.ID, "error", err)
		}
	}
	return msg, nil
}

// IsParticipant reports whether the user belongs to the chat, for websocket
// join checks.
func (s *ChatService) IsParticipant(ctx context.Context, userID, chatID uint) (bool, error) {
	chat, err := s.chats.GetParticipants(ctx, chatID)
	if err != nil {
		return false, err
	}
	return chat.HasParticipant(userID), nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"worklane/internal/models"
)

// ChatRepository defines the data access contract for conversations.
type ChatRepository interface {
	FindBetween(ctx context.Context, userA, userB uint) (*models.Chat, error)
	Create(ctx context.Context, userA, userB uint) (*models.Chat, error)
	GetWithMessages(ctx context.Context, chatID uint) (*models.Chat, error)
	GetParticipants(ctx context.Context, chatID uint) (*models.Chat, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Chat, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// FindBetween looks up the conversation shared by exactly these two users.
// Returns (nil, nil) when none exists yet.
func (r *chatRepository) FindBetween(ctx context.Context, userA, userB uint) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_participants cp1 ON cp1.chat_id = chats.id AND cp1.user_id = ?", userA).
		Joins("JOIN chat_participants cp2 ON cp2.chat_id = chats.id AND cp2.user_id = ?", userB).
		Preload("Participants", publicUserFields).
		First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding chat between %d and %d: %w", userA, userB, err)
	}
	return &chat, nil
}

func (r *chatRepository) Create(ctx context.Context, userA, userB uint) (*models.Chat, error) {
	chat := &models.Chat{
		Participants: []models.User{{ID: userA}, {ID: userB}},
	}
	err := r.db.WithContext(ctx).Omit("Participants.*").Create(chat).Error
	if err != nil {
		return nil, fmt.Errorf("creating chat: %w", err)
	}
	return r.GetParticipants(ctx, chat.ID)
}

func (r *chatRepository) GetWithMessages(ctx context.Context, chatID uint) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants", publicUserFields).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC")
		}).
		Preload("Messages.Sender", publicUserFields).
		First(&chat, chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("chat")
		}
		return nil, fmt.Errorf("fetching chat %d: %w", chatID, err)
	}
	return &chat, nil
}

// GetParticipants loads a chat with only its participant list, for access
// checks before touching messages.
func (r *chatRepository) GetParticipants(ctx context.Context, chatID uint) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants", publicUserFields).
		First(&chat, chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("chat")
		}
		return nil, fmt.Errorf("fetching chat %d: %w", chatID, err)
	}
	return &chat, nil
}

func (r *chatRepository) ListForUser(ctx context.Context, userID uint) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_participants cp ON cp.chat_id = chats.id AND cp.user_id = ?", userID).
		Preload("Participants", publicUserFields).
		Order("chats.updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, fmt.Errorf("listing chats for user %d: %w", userID, err)
	}
	return chats, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("creating message: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Preload("Sender", publicUserFields).
		First(msg, msg.ID).Error; err != nil {
		return fmt.Errorf("reloading message: %w", err)
	}
	// bump the chat's updated_at so conversation lists sort by recency
	if err := r.db.WithContext(ctx).Model(&models.Chat{}).
		Where("id = ?", msg.ChatID).
		Update("updated_at", msg.CreatedAt).Error; err != nil {
		return fmt.Errorf("touching chat %d: %w", msg.ChatID, err)
	}
	return nil
}

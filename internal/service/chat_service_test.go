package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"worklane/internal/models"
	"worklane/internal/repository"
)

type recordingPublisher struct {
	published []*models.Message
	chatIDs   []uint
	err       error
}

func (p *recordingPublisher) PublishChatMessage(_ context.Context, chatID uint, msg *models.Message) error {
	p.published = append(p.published, msg)
	p.chatIDs = append(p.chatIDs, chatID)
	return p.err
}

func newChatService(t *testing.T) (*ChatService, *recordingPublisher, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	pub := &recordingPublisher{}
	svc := NewChatService(repository.NewChatRepository(db), repository.NewUserRepository(db), pub)
	return svc, pub, db
}

func TestChatService_OpenChat(t *testing.T) {
	svc, _, db := newChatService(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	t.Run("missing other user", func(t *testing.T) {
		_, err := svc.OpenChat(ctx, alice.ID, 0)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
	})

	t.Run("self chat", func(t *testing.T) {
		_, err := svc.OpenChat(ctx, alice.ID, alice.ID)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
	})

	t.Run("unknown other user", func(t *testing.T) {
		_, err := svc.OpenChat(ctx, alice.ID, 9999)
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeNotFound, err.(*models.AppError).Code)
	})

	t.Run("idempotent per pair", func(t *testing.T) {
		first, err := svc.OpenChat(ctx, alice.ID, bob.ID)
		require.NoError(t, err)

		again, err := svc.OpenChat(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
	})
}

func TestChatService_SendMessage(t *testing.T) {
	svc, pub, db := newChatService(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	mallory := seedUser(t, db, "mallory")

	chat, err := svc.OpenChat(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	t.Run("blank content", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, alice.ID, chat.ID, "   ")
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
		assert.Empty(t, pub.published)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, alice.ID, chat.ID, strings.Repeat("x", maxMessageLen+1))
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
	})

	t.Run("non-participant", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, mallory.ID, chat.ID, "let me in")
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeForbidden, err.(*models.AppError).Code)
		assert.Empty(t, pub.published)
	})

	t.Run("persists then publishes", func(t *testing.T) {
		msg, err := svc.SendMessage(ctx, alice.ID, chat.ID, "hello bob")
		require.NoError(t, err)
		assert.NotZero(t, msg.ID)

		require.Len(t, pub.published, 1)
		assert.Equal(t, msg.ID, pub.published[0].ID)
		assert.Equal(t, chat.ID, pub.chatIDs[0])
	})

	t.Run("publish failure does not fail the write", func(t *testing.T) {
		pub.err = assert.AnError
		msg, err := svc.SendMessage(ctx, bob.ID, chat.ID, "still works")
		require.NoError(t, err)
		assert.NotZero(t, msg.ID)
	})
}

func TestChatService_GetChat_HidesFromOutsiders(t *testing.T) {
	svc, _, db := newChatService(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	mallory := seedUser(t, db, "mallory")

	chat, err := svc.OpenChat(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, alice.ID, chat.ID, "secret")
	require.NoError(t, err)

	got, err := svc.GetChat(ctx, bob.ID, chat.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)

	// an outsider sees the same 404 as for a chat that does not exist
	_, err = svc.GetChat(ctx, mallory.ID, chat.ID)
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeNotFound, err.(*models.AppError).Code)

	_, err = svc.GetChat(ctx, mallory.ID, 9999)
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeNotFound, err.(*models.AppError).Code)
}

func TestChatService_IsParticipant(t *testing.T) {
	svc, _, db := newChatService(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	mallory := seedUser(t, db, "mallory")

	chat, err := svc.OpenChat(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	ok, err := svc.IsParticipant(ctx, alice.ID, chat.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsParticipant(ctx, mallory.ID, chat.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

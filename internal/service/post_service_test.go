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

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
		Type:     models.UserTypeClient,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestResolveOrder(t *testing.T) {
	tests := []struct {
		name      string
		in        ListInput
		wantCol   string
		wantDesc  bool
		wantError string
	}{
		{name: "defaults", in: ListInput{}, wantCol: "created_at", wantDesc: true},
		{name: "likes asc", in: ListInput{OrderBy: "likes", OrderDirection: "asc"}, wantCol: "likes", wantDesc: false},
		{name: "explicit desc", in: ListInput{OrderBy: "createdAt", OrderDirection: "desc"}, wantCol: "created_at", wantDesc: true},
		{
			name:      "unknown field",
			in:        ListInput{OrderBy: "views"},
			wantError: `invalid orderBy "views", valid fields: createdAt, likes`,
		},
		{
			name:      "bad direction",
			in:        ListInput{OrderBy: "likes", OrderDirection: "sideways"},
			wantError: "orderDirection must be asc or desc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := resolveOrder(tt.in, postOrderColumns)
			if tt.wantError != "" {
				require.Error(t, err)
				var appErr *models.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, models.ErrCodeValidation, appErr.Code)
				assert.Equal(t, tt.wantError, appErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCol, opts.Column)
			assert.Equal(t, tt.wantDesc, opts.Desc)
		})
	}
}

func TestPostService_CreatePost(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewPostService(repository.NewPostRepository(db))
	ctx := context.Background()

	author := seedUser(t, db, "maker")

	t.Run("missing title", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Description: "d"})
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
	})

	t.Run("success with hashtags", func(t *testing.T) {
		post, err := svc.CreatePost(ctx, CreatePostInput{
			AuthorID:    author.ID,
			Title:       "Portfolio piece",
			Description: "recent work",
			Hashtags:    []string{"design"},
		})
		require.NoError(t, err)
		assert.NotZero(t, post.ID)
		assert.Len(t, post.Hashtags, 1)
	})
}

func TestPostService_ListPosts_RejectsUnknownField(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewPostService(repository.NewPostRepository(db))

	_, err := svc.ListPosts(context.Background(), ListInput{OrderBy: "budget"})
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
	assert.Contains(t, err.(*models.AppError).Message, "createdAt, likes")
}

func TestPostService_AddComment(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewPostService(repository.NewPostRepository(db))
	ctx := context.Background()

	author := seedUser(t, db, "poster")
	post, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Title: "t", Description: "d"})
	require.NoError(t, err)

	t.Run("blank content", func(t *testing.T) {
		_, err := svc.AddComment(ctx, CreateCommentInput{AuthorID: author.ID, TargetID: post.ID, Content: "  "})
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := svc.AddComment(ctx, CreateCommentInput{
			AuthorID: author.ID, TargetID: post.ID,
			Content: strings.Repeat("a", maxCommentLen+1),
		})
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := svc.AddComment(ctx, CreateCommentInput{AuthorID: author.ID, TargetID: 9999, Content: "hi"})
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeNotFound, err.(*models.AppError).Code)
	})

	t.Run("success", func(t *testing.T) {
		comment, err := svc.AddComment(ctx, CreateCommentInput{AuthorID: author.ID, TargetID: post.ID, Content: "nice"})
		require.NoError(t, err)
		require.NotNil(t, comment.PostID)
		assert.Equal(t, post.ID, *comment.PostID)
		require.NotNil(t, comment.Author)
		assert.Equal(t, "poster", comment.Author.Username)
	})
}

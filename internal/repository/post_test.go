package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklane/internal/models"
)

func createTestUser(t *testing.T, repo UserRepository, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
		Type:     models.UserTypeClient,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestPostRepository_Create_ConnectOrCreateHashtags(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, users, "author1")

	p1 := &models.Post{Title: "First", Description: "d", AuthorID: author.ID}
	require.NoError(t, posts.Create(ctx, p1, []string{"webdesign", "branding"}))
	assert.Len(t, p1.Hashtags, 2)

	p2 := &models.Post{Title: "Second", Description: "d", AuthorID: author.ID}
	require.NoError(t, posts.Create(ctx, p2, []string{"webdesign", "remote"}))

	var tagCount int64
	db.Model(&models.Hashtag{}).Count(&tagCount)
	assert.EqualValues(t, 3, tagCount, "shared hashtag must be reused, not duplicated")
}

func TestPostRepository_List_Ordering(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, users, "author2")
	base := time.Now().Add(-24 * time.Hour)
	seedData := []struct {
		title string
		likes int
		age   time.Duration
	}{
		{"old-low", 1, 0},
		{"mid-high", 50, time.Hour},
		{"new-mid", 10, 2 * time.Hour},
	}
	for _, s := range seedData {
		p := &models.Post{Title: s.title, Description: "d", Likes: s.likes, AuthorID: author.ID}
		require.NoError(t, posts.Create(ctx, p, nil))
		require.NoError(t, db.Model(p).Update("created_at", base.Add(s.age)).Error)
	}

	byLikes, err := posts.List(ctx, ListOptions{Column: "likes", Desc: true})
	require.NoError(t, err)
	require.Len(t, byLikes, 3)
	assert.Equal(t, "mid-high", byLikes[0].Title)

	byCreated, err := posts.List(ctx, ListOptions{Column: "created_at", Desc: false})
	require.NoError(t, err)
	assert.Equal(t, "old-low", byCreated[0].Title)

	limited, err := posts.List(ctx, ListOptions{Column: "likes", Desc: true, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestPostRepository_List_AuthorPublicFieldsOnly(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, users, "author3")
	require.NoError(t, posts.Create(ctx, &models.Post{Title: "t", Description: "d", AuthorID: author.ID}, nil))

	listed, err := posts.List(ctx, ListOptions{Column: "created_at", Desc: true})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Author)
	assert.Equal(t, "author3", listed[0].Author.Username)
	assert.Empty(t, listed[0].Author.Password)
	assert.Empty(t, listed[0].Author.Email)
}

func TestPostRepository_GetByID_CommentsAscending(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, users, "author4")
	post := &models.Post{Title: "t", Description: "d", AuthorID: author.ID}
	require.NoError(t, posts.Create(ctx, post, nil))

	now := time.Now()
	for i, content := range []string{"first", "second", "third"} {
		postID := post.ID
		c := &models.Comment{Content: content, AuthorID: author.ID, PostID: &postID}
		require.NoError(t, posts.CreateComment(ctx, c))
		require.NoError(t, db.Model(c).Update("created_at", now.Add(time.Duration(i)*time.Minute)).Error)
	}

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 3)
	assert.Equal(t, "first", got.Comments[0].Content)
	assert.Equal(t, "third", got.Comments[2].Content)
	require.NotNil(t, got.Comments[0].Author)
	assert.Empty(t, got.Comments[0].Author.Password)
}

func TestPostRepository_Search_MatchesHashtag(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, users, "author5")
	require.NoError(t, posts.Create(ctx,
		&models.Post{Title: "Logo refresh", Description: "d", AuthorID: author.ID},
		[]string{"branding"}))
	require.NoError(t, posts.Create(ctx,
		&models.Post{Title: "Unrelated", Description: "d", AuthorID: author.ID},
		[]string{"remote"}))

	byTag, err := posts.Search(ctx, "BRANDING", 10)
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Logo refresh", byTag[0].Title)

	byTitle, err := posts.Search(ctx, "logo", 10)
	require.NoError(t, err)
	assert.Len(t, byTitle, 1)
}

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklane/internal/models"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hash",
		Name:     "Alice",
		Type:     models.UserTypeWorker,
		WorkerProfile: &models.WorkerProfile{
			Profession: "Web Developer",
		},
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	require.NotNil(t, got.WorkerProfile)
	assert.Equal(t, "Web Developer", got.WorkerProfile.Profession)
}

func TestUserRepository_Create_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := &models.User{Username: "bob", Email: "bob@example.com", Password: "x", Type: models.UserTypeClient}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.User{Username: "bob", Email: "other@example.com", Password: "x", Type: models.UserTypeClient}
	err := repo.Create(ctx, dup)
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.ErrCodeConflict, appErr.Code)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), 9999)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.ErrCodeNotFound, appErr.Code)
}

func TestUserRepository_GetByLogin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "carol", Email: "carol@example.com", Password: "x", Type: models.UserTypeClient}
	require.NoError(t, repo.Create(ctx, user))

	byName, err := repo.GetByLogin(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetByLogin(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepository_Search_CaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{
		Username: "designer_dan", Email: "dan@example.com", Password: "x",
		Name: "Dan Eriksen", Type: models.UserTypeWorker,
	}))
	require.NoError(t, repo.Create(ctx, &models.User{
		Username: "unrelated", Email: "u@example.com", Password: "x",
		Name: "Someone Else", Type: models.UserTypeClient,
	}))

	byUsername, err := repo.Search(ctx, "DESIGNER", 10)
	require.NoError(t, err)
	require.Len(t, byUsername, 1)
	assert.Equal(t, "designer_dan", byUsername[0].Username)
	// search results carry only public columns
	assert.Empty(t, byUsername[0].Password)

	byName, err := repo.Search(ctx, "eriksen", 10)
	require.NoError(t, err)
	require.Len(t, byName, 1)
}

func TestUserRepository_ReplaceSkills(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		Username: "erin", Email: "erin@example.com", Password: "x",
		Type: models.UserTypeWorker, WorkerProfile: &models.WorkerProfile{},
	}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.ReplaceSkills(ctx, user.WorkerProfile, []string{"golang", "react"}))
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, got.WorkerProfile.Skills, 2)

	// replacing reuses existing skill rows and drops removed ones
	require.NoError(t, repo.ReplaceSkills(ctx, user.WorkerProfile, []string{"golang", "figma"}))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	names := []string{got.WorkerProfile.Skills[0].Name, got.WorkerProfile.Skills[1].Name}
	assert.ElementsMatch(t, []string{"golang", "figma"}, names)

	var skillCount int64
	db.Model(&models.Skill{}).Count(&skillCount)
	assert.EqualValues(t, 3, skillCount)
}

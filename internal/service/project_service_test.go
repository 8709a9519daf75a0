package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"worklane/internal/models"
	"worklane/internal/repository"
)

func newProjectService(t *testing.T) (*ProjectService, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	return NewProjectService(repository.NewProjectRepository(db), repository.NewPostRepository(db)), db
}

func TestProjectService_CreateProject_Validation(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()
	client := seedUser(t, db, "client")

	tests := []struct {
		name string
		in   CreateProjectInput
	}{
		{"missing title", CreateProjectInput{AuthorID: client.ID, Description: "d", Budget: "100"}},
		{"missing description", CreateProjectInput{AuthorID: client.ID, Title: "t", Budget: "100"}},
		{"missing budget", CreateProjectInput{AuthorID: client.ID, Title: "t", Description: "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProject(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
		})
	}
}

func TestProjectService_ListProjects_OrderByBudget(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()
	client := seedUser(t, db, "client")

	for _, budget := range []string{"100", "900"} {
		_, err := svc.CreateProject(ctx, CreateProjectInput{
			AuthorID: client.ID, Title: "p", Description: "d", Budget: budget,
		})
		require.NoError(t, err)
	}

	listed, err := svc.ListProjects(ctx, ListInput{OrderBy: "budget", OrderDirection: "desc"})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "900", listed[0].Budget)

	_, err = svc.ListProjects(ctx, ListInput{OrderBy: "likes"})
	require.Error(t, err)
	assert.Contains(t, err.(*models.AppError).Message, "budget, createdAt")
}

func TestProjectService_Apply(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()

	client := seedUser(t, db, "client")
	worker := seedUser(t, db, "worker")
	project, err := svc.CreateProject(ctx, CreateProjectInput{
		AuthorID: client.ID, Title: "t", Description: "d", Budget: "500",
	})
	require.NoError(t, err)

	t.Run("missing project id", func(t *testing.T) {
		_, err := svc.Apply(ctx, ApplyInput{WorkerID: worker.ID, ProposedFee: 100})
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
	})

	t.Run("non-positive fee", func(t *testing.T) {
		_, err := svc.Apply(ctx, ApplyInput{WorkerID: worker.ID, ProjectID: project.ID, ProposedFee: 0})
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeValidation, err.(*models.AppError).Code)
		assert.Equal(t, "proposedFee must be a positive number", err.(*models.AppError).Message)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := svc.Apply(ctx, ApplyInput{WorkerID: worker.ID, ProjectID: 9999, ProposedFee: 100})
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeNotFound, err.(*models.AppError).Code)
	})

	t.Run("success then duplicate", func(t *testing.T) {
		app, err := svc.Apply(ctx, ApplyInput{
			WorkerID: worker.ID, ProjectID: project.ID,
			CoverLetter: "pick me", ProposedFee: 450,
		})
		require.NoError(t, err)
		assert.NotZero(t, app.ID)

		_, err = svc.Apply(ctx, ApplyInput{WorkerID: worker.ID, ProjectID: project.ID, ProposedFee: 400})
		require.Error(t, err)
		assert.Equal(t, models.ErrCodeConflict, err.(*models.AppError).Code)
	})
}

func TestProjectService_AddComment(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()

	client := seedUser(t, db, "client")
	project, err := svc.CreateProject(ctx, CreateProjectInput{
		AuthorID: client.ID, Title: "t", Description: "d", Budget: "100",
	})
	require.NoError(t, err)

	comment, err := svc.AddComment(ctx, CreateCommentInput{
		AuthorID: client.ID, TargetID: project.ID, Content: "question about scope",
	})
	require.NoError(t, err)
	require.NotNil(t, comment.ProjectID)
	assert.Equal(t, project.ID, *comment.ProjectID)
	assert.Nil(t, comment.PostID)

	_, err = svc.AddComment(ctx, CreateCommentInput{AuthorID: client.ID, TargetID: 9999, Content: "hi"})
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeNotFound, err.(*models.AppError).Code)
}

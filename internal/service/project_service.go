package service

import (
	"context"
	"strings"
	"time"

	"worklane/internal/models"
	"worklane/internal/repository"
)

var projectOrderColumns = map[string]string{
	"createdAt": "created_at",
	"budget":    "budget",
}

type ProjectService struct {
	projects repository.ProjectRepository
	posts    repository.PostRepository
}

func NewProjectService(projects repository.ProjectRepository, posts repository.PostRepository) *ProjectService {
	return &ProjectService{projects: projects, posts: posts}
}

type CreateProjectInput struct {
	AuthorID    uint
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Budget      string    `json:"budget"`
	Deadline    time.Time `json:"deadline"`
	Hashtags    []string  `json:"hashtags"`
}

type ApplyInput struct {
	WorkerID    uint
	ProjectID   uint    `json:"projectId"`
	CoverLetter string  `json:"coverLetter"`
	ProposedFee float64 `json:"proposedFee"`
}

func (s *ProjectService) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("title is required")
	}
	if in.Description == "" {
		return nil, models.NewValidationError("description is required")
	}
	if in.Budget == "" {
		return nil, models.NewValidationError("budget is required")
	}

	project := &models.Project{
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		Deadline:    in.Deadline,
		AuthorID:    in.AuthorID,
	}
	if err := s.projects.Create(ctx, project, in.Hashtags); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *ProjectService) ListProjects(ctx context.Context, in ListInput) ([]models.Project, error) {
	opts, err := resolveOrder(in, projectOrderColumns)
	if err != nil {
		return nil, err
	}
	return s.projects.List(ctx, opts)
}

// ListByAuthor returns the caller's projects with their applications attached.
func (s *ProjectService) ListByAuthor(ctx context.Context, authorID uint) ([]models.Project, error) {
	return s.projects.ListByAuthor(ctx, authorID)
}

// AddComment attaches a comment to a project.
func (s *ProjectService) AddComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.TargetID == 0 {
		return nil, models.NewValidationError("projectId is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("comment too long (max 10000 characters)")
	}
	if _, err := s.projects.GetByID(ctx, in.TargetID); err != nil {
		return nil, err
	}

	projectID := in.TargetID
	comment := &models.Comment{
		Content:   in.Content,
		AuthorID:  in.AuthorID,
		ProjectID: &projectID,
	}
	if err := s.posts.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Apply submits a worker's bid. A second application to the same project is a
// conflict, enforced by the composite unique index underneath.
func (s *ProjectService) Apply(ctx context.Context, in ApplyInput) (*models.Application, error) {
	if in.ProjectID == 0 {
		return nil, models.NewValidationError("projectId is required")
	}
	if in.ProposedFee <= 0 {
		return nil, models.NewValidationError("proposedFee must be a positive number")
	}
	if _, err := s.projects.GetByID(ctx, in.ProjectID); err != nil {
		return nil, err
	}

	app := &models.Application{
		ProjectID:   in.ProjectID,
		WorkerID:    in.WorkerID,
		CoverLetter: in.CoverLetter,
		ProposedFee: in.ProposedFee,
	}
	if err := s.projects.CreateApplication(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"worklane/internal/cache"
	"worklane/internal/models"
)

// ProjectRepository defines the data access contract for projects and applications.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project, hashtags []string) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	List(ctx context.Context, opts ListOptions) ([]models.Project, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]models.Project, error)
	CreateApplication(ctx context.Context, app *models.Application) error
	Search(ctx context.Context, query string, limit int) ([]models.Project, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project, hashtags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveHashtags(ctx, tx, hashtags)
		if err != nil {
			return err
		}
		project.Hashtags = tags
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		return nil
	})
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	err := cache.Aside(ctx, cache.ProjectKey(id), &p, cache.ProjectTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("Author", publicUserFields).
			Preload("Hashtags").
			Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("comments.created_at ASC")
			}).
			Preload("Comments.Author", publicUserFields).
			First(&p, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("project")
		}
		return nil, fmt.Errorf("fetching project %d: %w", id, err)
	}
	return &p, nil
}

func (r *projectRepository) List(ctx context.Context, opts ListOptions) ([]models.Project, error) {
	var projects []models.Project
	q := r.db.WithContext(ctx).
		Preload("Author", publicUserFields).
		Preload("Hashtags").
		Order(opts.order())
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if err := q.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// ListByAuthor returns a client's own projects with their applications, so
// that the dashboard can show incoming bids in one query.
func (r *projectRepository) ListByAuthor(ctx context.Context, authorID uint) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Preload("Hashtags").
		Preload("Applications").
		Preload("Applications.Worker", publicUserFields).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("listing projects for author %d: %w", authorID, err)
	}
	return projects, nil
}

func (r *projectRepository) CreateApplication(ctx context.Context, app *models.Application) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("you have already applied to this project")
		}
		return fmt.Errorf("creating application: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Preload("Worker", publicUserFields).
		First(app, app.ID).Error; err != nil {
		return fmt.Errorf("reloading application: %w", err)
	}
	cache.InvalidateProject(ctx, app.ProjectID)
	return nil
}

func (r *projectRepository) Search(ctx context.Context, query string, limit int) ([]models.Project, error) {
	var projects []models.Project
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Preload("Author", publicUserFields).
		Preload("Hashtags").
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR projects.id IN (?)",
			pattern, pattern,
			r.db.Table("project_hashtags").
				Select("project_hashtags.project_id").
				Joins("JOIN hashtags ON hashtags.id = project_hashtags.hashtag_id").
				Where("LOWER(hashtags.name) LIKE LOWER(?)", pattern)).
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("searching projects: %w", err)
	}
	return projects, nil
}

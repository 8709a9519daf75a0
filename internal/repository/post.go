package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"worklane/internal/cache"
	"worklane/internal/models"
)

// ListOptions control ordering and paging of feed queries. Column must be an
// actual column name, mapped by the service layer from the API field.
type ListOptions struct {
	Column string
	Desc   bool
	Limit  int
}

func (o ListOptions) order() clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc}
}

// PostRepository defines the data access contract for posts and their comments.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, hashtags []string) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, opts ListOptions) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	Search(ctx context.Context, query string, limit int) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// resolveHashtags turns tag names into rows, creating missing ones.
func resolveHashtags(ctx context.Context, tx *gorm.DB, names []string) ([]models.Hashtag, error) {
	tags := make([]models.Hashtag, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		var tag models.Hashtag
		if err := tx.WithContext(ctx).Where(models.Hashtag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return nil, fmt.Errorf("resolving hashtag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, hashtags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveHashtags(ctx, tx, hashtags)
		if err != nil {
			return err
		}
		post.Hashtags = tags
		if err := tx.Create(post).Error; err != nil {
			return fmt.Errorf("creating post: %w", err)
		}
		return nil
	})
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var p models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &p, cache.PostTTL, func() error {
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
			return nil, models.NewNotFoundError("post")
		}
		return nil, fmt.Errorf("fetching post %d: %w", id, err)
	}
	return &p, nil
}

func (r *postRepository) List(ctx context.Context, opts ListOptions) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).
		Preload("Author", publicUserFields).
		Preload("Hashtags").
		Order(opts.order())
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Hashtags").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("listing posts for author %d: %w", authorID, err)
	}
	return posts, nil
}

func (r *postRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("creating comment: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Preload("Author", publicUserFields).
		First(comment, comment.ID).Error; err != nil {
		return fmt.Errorf("reloading comment: %w", err)
	}
	if comment.PostID != nil {
		cache.InvalidatePost(ctx, *comment.PostID)
	}
	if comment.ProjectID != nil {
		cache.InvalidateProject(ctx, *comment.ProjectID)
	}
	return nil
}

func (r *postRepository) Search(ctx context.Context, query string, limit int) ([]models.Post, error) {
	var posts []models.Post
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Preload("Author", publicUserFields).
		Preload("Hashtags").
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR posts.id IN (?)",
			pattern, pattern,
			r.db.Table("post_hashtags").
				Select("post_hashtags.post_id").
				Joins("JOIN hashtags ON hashtags.id = post_hashtags.hashtag_id").
				Where("LOWER(hashtags.name) LIKE LOWER(?)", pattern)).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("searching posts: %w", err)
	}
	return posts, nil
}

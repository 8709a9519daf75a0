package service

import (
	"context"
	"fmt"
	"strings"

	"worklane/internal/models"
	"worklane/internal/repository"
)

const maxCommentLen = 10000

// postOrderColumns maps API order fields to actual columns. Anything else is a
// validation error.
var postOrderColumns = map[string]string{
	"createdAt": "created_at",
	"likes":     "likes",
}

type PostService struct {
	posts repository.PostRepository
}

func NewPostService(posts repository.PostRepository) *PostService {
	return &PostService{posts: posts}
}

type CreatePostInput struct {
	AuthorID    uint
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Gallery     []string `json:"gallery"`
	Links       []string `json:"links"`
	EmbedCode   string   `json:"embedCode"`
	Hashtags    []string `json:"hashtags"`
}

type ListInput struct {
	OrderBy        string
	OrderDirection string
	Quant          int
}

type CreateCommentInput struct {
	AuthorID uint
	TargetID uint
	Content  string
}

// resolveOrder validates the API order field against the allowed set and
// returns repository options.
func resolveOrder(in ListInput, columns map[string]string) (repository.ListOptions, error) {
	field := in.OrderBy
	if field == "" {
		field = "createdAt"
	}
	column, ok := columns[field]
	if !ok {
		valid := make([]string, 0, len(columns))
		for k := range columns {
			valid = append(valid, k)
		}
		// deterministic message ordering
		if len(valid) == 2 && valid[0] > valid[1] {
			valid[0], valid[1] = valid[1], valid[0]
		}
		return repository.ListOptions{}, models.NewValidationError(
			fmt.Sprintf("invalid orderBy %q, valid fields: %s", field, strings.Join(valid, ", ")))
	}

	desc := true
	switch in.OrderDirection {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return repository.ListOptions{}, models.NewValidationError("orderDirection must be asc or desc")
	}

	return repository.ListOptions{Column: column, Desc: desc, Limit: in.Quant}, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("title is required")
	}
	if in.Description == "" {
		return nil, models.NewValidationError("description is required")
	}

	post := &models.Post{
		Title:       in.Title,
		Description: in.Description,
		Gallery:     in.Gallery,
		Links:       in.Links,
		EmbedCode:   in.EmbedCode,
		AuthorID:    in.AuthorID,
	}
	if err := s.posts.Create(ctx, post, in.Hashtags); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *PostService) ListPosts(ctx context.Context, in ListInput) ([]models.Post, error) {
	opts, err := resolveOrder(in, postOrderColumns)
	if err != nil {
		return nil, err
	}
	return s.posts.List(ctx, opts)
}

func (s *PostService) ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	return s.posts.ListByAuthor(ctx, authorID)
}

// AddComment attaches a comment to a post. The post must exist first; the
// author always comes from the session, never the body.
func (s *PostService) AddComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.TargetID == 0 {
		return nil, models.NewValidationError("postId is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("comment too long (max 10000 characters)")
	}
	if _, err := s.posts.GetByID(ctx, in.TargetID); err != nil {
		return nil, err
	}

	postID := in.TargetID
	comment := &models.Comment{
		Content:  in.Content,
		AuthorID: in.AuthorID,
		PostID:   &postID,
	}
	if err := s.posts.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

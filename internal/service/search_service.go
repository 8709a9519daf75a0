package service

import (
	"context"
	"strings"

	"worklane/internal/models"
	"worklane/internal/repository"
)

const searchLimit = 10

type SearchService struct {
	posts    repository.PostRepository
	projects repository.ProjectRepository
}

func NewSearchService(posts repository.PostRepository, projects repository.ProjectRepository) *SearchService {
	return &SearchService{posts: posts, projects: projects}
}

// SearchResult groups the matched resources per kind.
type SearchResult struct {
	Posts    []models.Post    `json:"posts"`
	Projects []models.Project `json:"projects"`
}

// Search matches posts and projects on title, description and hashtag name,
// ten of each at most.
func (s *SearchService) Search(ctx context.Context, query string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("query is required")
	}

	posts, err := s.posts.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Posts: posts, Projects: projects}, nil
}

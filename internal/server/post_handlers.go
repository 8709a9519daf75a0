package server

import (
	"github.com/gofiber/fiber/v2"

	"worklane/internal/models"
	"worklane/internal/service"
)

// listInput reads the shared orderBy/orderDirection/quant query parameters.
func listInput(c *fiber.Ctx) service.ListInput {
	return service.ListInput{
		OrderBy:        c.Query("orderBy"),
		OrderDirection: c.Query("orderDirection"),
		Quant:          c.QueryInt("quant"),
	}
}

// CreatePost publishes a new post for the session user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var in service.CreatePostInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}
	in.AuthorID = currentUser(c).ID

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "post created", fiber.Map{
		"post": post,
	})
}

// GetPosts lists posts ordered by createdAt or likes.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext(), listInput(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "posts retrieved", fiber.Map{
		"posts": posts,
	})
}

// GetPost returns one post with hashtags, author and comments.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "post retrieved", fiber.Map{
		"post": post,
	})
}

type commentRequest struct {
	PostID    uint   `json:"postId"`
	ProjectID uint   `json:"projectId"`
	Content   string `json:"content"`
}

// CreatePostComment attaches a comment to a post. The author is always the
// session user.
func (s *Server) CreatePostComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}

	comment, err := s.postService.AddComment(c.UserContext(), service.CreateCommentInput{
		AuthorID: currentUser(c).ID,
		TargetID: req.PostID,
		Content:  req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "comment created", fiber.Map{
		"comment": comment,
	})
}

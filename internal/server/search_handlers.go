package server

import (
	"github.com/gofiber/fiber/v2"

	"worklane/internal/models"
)

// Search matches posts and projects on title, description and hashtags.
func (s *Server) Search(c *fiber.Ctx) error {
	result, err := s.searchService.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "search results", result)
}

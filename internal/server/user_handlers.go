package server

import (
	"github.com/gofiber/fiber/v2"

	"worklane/internal/models"
)

const userSearchLimit = 50

// GetUsers lists users, optionally filtered by a case-insensitive query on
// username or display name.
func (s *Server) GetUsers(c *fiber.Ctx) error {
	query := c.Query("query")
	users, err := s.userRepo.Search(c.UserContext(), query, userSearchLimit)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "users retrieved", fiber.Map{
		"users": users,
	})
}

// GetUserByUsername returns a public profile, including the worker profile
// with skills and portfolio for WORKER accounts.
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return respondError(c, models.NewValidationError("username is required"))
	}

	user, err := s.userRepo.GetByUsername(c.UserContext(), username)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "user retrieved", fiber.Map{
		"user": user,
	})
}

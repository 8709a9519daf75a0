package server

import (
	"github.com/gofiber/fiber/v2"

	"worklane/internal/models"
	"worklane/internal/service"
)

// Signup registers a new user and opens a session for it.
func (s *Server) Signup(c *fiber.Ctx) error {
	var in service.SignupInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}

	user, token, err := s.authService.Signup(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	s.setSessionCookie(c, token)
	return models.Respond(c, fiber.StatusCreated, "user created", fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Login authenticates by username or email and opens a session.
func (s *Server) Login(c *fiber.Ctx) error {
	var in service.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}

	user, token, err := s.authService.Login(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	s.setSessionCookie(c, token)
	return models.Respond(c, fiber.StatusOK, "logged in", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the caller's session and expires the cookie. Public route;
// logging out without a session is a no-op success.
func (s *Server) Logout(c *fiber.Ctx) error {
	token := s.sessionToken(c)
	if err := s.authService.Logout(c.UserContext(), token); err != nil {
		return respondError(c, err)
	}
	s.clearSessionCookie(c)
	return models.Respond(c, fiber.StatusOK, "logged out", nil)
}

// Session reports whether the caller holds a valid session. Never a 401; an
// anonymous caller simply gets isAuthenticated=false.
func (s *Server) Session(c *fiber.Ctx) error {
	token := s.sessionToken(c)
	if token == "" {
		return models.Respond(c, fiber.StatusOK, "no active session", fiber.Map{
			"isAuthenticated": false,
			"user":            nil,
		})
	}

	user, err := s.authService.ValidateSession(c.UserContext(), token)
	if err != nil {
		s.clearSessionCookie(c)
		return models.Respond(c, fiber.StatusOK, "no active session", fiber.Map{
			"isAuthenticated": false,
			"user":            nil,
		})
	}
	return models.Respond(c, fiber.StatusOK, "active session", fiber.Map{
		"isAuthenticated": true,
		"user":            user,
	})
}

// Verify returns the session user. The gate already validated the token.
func (s *Server) Verify(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, "token valid", fiber.Map{
		"user": currentUser(c),
	})
}

// EditProfile applies a partial update to the caller's profile.
func (s *Server) EditProfile(c *fiber.Ctx) error {
	var in service.EditProfileInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}
	in.UserID = currentUser(c).ID

	user, err := s.authService.EditProfile(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "profile updated", fiber.Map{
		"user": user,
	})
}

// MyPosts lists the caller's own posts.
func (s *Server) MyPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListByAuthor(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "posts retrieved", fiber.Map{
		"posts": posts,
	})
}

// MyProjects lists the caller's own projects with their applications.
func (s *Server) MyProjects(c *fiber.Ctx) error {
	projects, err := s.projectService.ListByAuthor(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "projects retrieved", fiber.Map{
		"projects": projects,
	})
}

package server

import (
	"github.com/gofiber/fiber/v2"

	"worklane/internal/models"
	"worklane/internal/service"
)

// CreateProject publishes a new job posting for the session user.
func (s *Server) CreateProject(c *fiber.Ctx) error {
	var in service.CreateProjectInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}
	in.AuthorID = currentUser(c).ID

	project, err := s.projectService.CreateProject(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "project created", fiber.Map{
		"project": project,
	})
}

// GetProjects lists projects ordered by createdAt or budget.
func (s *Server) GetProjects(c *fiber.Ctx) error {
	projects, err := s.projectService.ListProjects(c.UserContext(), listInput(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "projects retrieved", fiber.Map{
		"projects": projects,
	})
}

// GetProject returns one project with hashtags, author and comments.
func (s *Server) GetProject(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	project, err := s.projectService.GetProject(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "project retrieved", fiber.Map{
		"project": project,
	})
}

// CreateProjectComment attaches a comment to a project.
func (s *Server) CreateProjectComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}

	comment, err := s.projectService.AddComment(c.UserContext(), service.CreateCommentInput{
		AuthorID: currentUser(c).ID,
		TargetID: req.ProjectID,
		Content:  req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "comment created", fiber.Map{
		"comment": comment,
	})
}

// CreateApplication submits the session user's bid on a project.
func (s *Server) CreateApplication(c *fiber.Ctx) error {
	var in service.ApplyInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}
	in.WorkerID = currentUser(c).ID

	app, err := s.projectService.Apply(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "application submitted", fiber.Map{
		"application": app,
	})
}

// MyProjectApplications lists the caller's projects with incoming applications.
func (s *Server) MyProjectApplications(c *fiber.Ctx) error {
	projects, err := s.projectService.ListByAuthor(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "applications retrieved", fiber.Map{
		"projects": projects,
	})
}

package server

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"worklane/internal/models"
)

// parseIDParam reads a positive integer route parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("invalid " + name)
	}
	return uint(id), nil
}

// respondError maps an application error onto the envelope.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// safeErrorMessage extracts a client-safe message, hiding internal details.
func safeErrorMessage(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code != models.ErrCodeInternal {
		return appErr.Message
	}
	return "internal error"
}

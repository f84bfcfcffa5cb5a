package controllers

import (
	"errors"

	"training-portal/backend/services"
	"training-portal/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// serviceError renders a service failure with the status its kind maps to.
func serviceError(c *fiber.Ctx, log *utils.Logger, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrReference):
		return utils.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrConstraintViolation):
		return utils.Error(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.Unauthorized(c, "Invalid credentials")
	case errors.Is(err, services.ErrTransport):
		log.Error("store unavailable", "path", c.Path(), "error", err)
		return utils.Error(c, fiber.StatusServiceUnavailable, "Progress store is unavailable, please retry")
	default:
		log.Error("unexpected error", "path", c.Path(), "error", err)
		return utils.InternalServerError(c, "Internal server error")
	}
}

package handlers

import (
	"errors"

	"job-tracker-system/services"

	"github.com/gofiber/fiber/v2"
)

// respondErr maps core errors onto HTTP responses. Core errors are
// non-retryable caller mistakes and are surfaced verbatim; anything else
// is an infrastructure failure.
func respondErr(c *fiber.Ctx, err error) error {
	var transitionErr *services.InvalidTransitionError
	var validationError *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &transitionErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":            transitionErr.Error(),
			"current_status":   transitionErr.From,
			"requested_status": transitionErr.To,
		})
	case errors.Is(err, services.ErrUnknownStatus), errors.As(err, &validationError):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error", "cause": err.Error()})
	}
}

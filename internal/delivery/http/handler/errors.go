package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"sharespace/internal/delivery/http/middleware"
	"sharespace/internal/pkg/response"
	"sharespace/internal/usecase"
)

// mapUsecaseError translates the usecase sentinel errors into transport
// errors. Handlers add their own mappings for domain-specific sentinels
// before falling through to this.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

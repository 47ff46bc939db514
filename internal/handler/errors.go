package handler

import (
	"errors"

	"eie-registry/internal/productfile"
	"eie-registry/internal/service"
	"eie-registry/internal/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrUploadNotFound),
		errors.Is(err, service.ErrReportNotFound),
		errors.Is(err, service.ErrInstitutionNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, workflow.ErrForbiddenAction),
		errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNoOrganization):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, service.ErrEmailExists):
		return fiber.StatusConflict
	case errors.Is(err, productfile.ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, workflow.ErrUnknownAction),
		errors.Is(err, workflow.ErrMotivationRequired),
		errors.Is(err, service.ErrMotivationTooLong),
		errors.Is(err, service.ErrNoProducts),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrRoleNotFound),
		errors.Is(err, productfile.ErrInvalidFile):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// fail answers with the mapped status. Unexpected errors are logged and
// hidden behind fallback.
func fail(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Path()).Msg(fallback)
		return c.Status(status).JSON(fiber.Map{"error": fallback})
	}

	body := fiber.Map{"error": err.Error()}
	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		body["gtin_codes"] = conflict.GtinCodes
	}
	return c.Status(status).JSON(body)
}

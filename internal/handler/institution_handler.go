package handler

import (
	"eie-registry/internal/middleware"
	"eie-registry/internal/repository"
	"eie-registry/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type InstitutionHandler struct {
	institutionService service.InstitutionService
	logger             zerolog.Logger
}

func NewInstitutionHandler(institutionService service.InstitutionService, logger zerolog.Logger) *InstitutionHandler {
	return &InstitutionHandler{institutionService: institutionService, logger: logger}
}

// GET /api/v1/institutions?name=&page=&size=
func (h *InstitutionHandler) GetInstitutions(c *fiber.Ctx) error {
	page, err := h.institutionService.List(c.Query("name"), c.QueryInt("page", 0), c.QueryInt("size", repository.DefaultPageSize))
	if err != nil {
		return fail(c, h.logger, err, "Failed to fetch institutions")
	}
	return c.JSON(page)
}

// GET /api/v1/institutions/:id
func (h *InstitutionHandler) GetInstitution(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid institution ID"})
	}
	inst, err := h.institutionService.Get(id, middleware.ActorFrom(c))
	if err != nil {
		return fail(c, h.logger, err, "Failed to fetch institution")
	}
	return c.JSON(inst)
}

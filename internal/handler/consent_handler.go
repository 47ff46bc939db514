package handler

import (
	"eie-registry/internal/middleware"
	"eie-registry/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ConsentHandler struct {
	consentService service.ConsentService
}

func NewConsentHandler(consentService service.ConsentService) *ConsentHandler {
	return &ConsentHandler{consentService: consentService}
}

// GET /api/v1/consent
func (h *ConsentHandler) GetConsent(c *fiber.Ctx) error {
	status, err := h.consentService.Status(middleware.ActorFrom(c).UserID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch consent"})
	}
	return c.JSON(status)
}

// PUT /api/v1/consent
func (h *ConsentHandler) AcceptConsent(c *fiber.Ctx) error {
	status, err := h.consentService.Accept(middleware.ActorFrom(c).UserID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to record consent"})
	}
	return c.JSON(status)
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		return c.Status(503).JSON(fiber.Map{"status": "unavailable", "error": "database unreachable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

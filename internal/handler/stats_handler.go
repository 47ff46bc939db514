package handler

import (
	"strconv"

	"eie-registry/internal/middleware"
	"eie-registry/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	service service.StatsService
}

func NewStatsHandler(s service.StatsService) *StatsHandler {
	return &StatsHandler{service: s}
}

// GetProductStats returns product counts per status
// GET /api/v1/stats/products
func (h *StatsHandler) GetProductStats(c *fiber.Ctx) error {
	counts, err := h.service.ProductCounts(middleware.ActorFrom(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch product stats"})
	}
	return c.JSON(counts)
}

// GetStatusMovement returns reviewer actions per day for charts
// Query params: days (default 7)
func (h *StatsHandler) GetStatusMovement(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 {
		days = service.DefaultMovementDays
	}
	if days > service.MaxMovementDays {
		days = service.MaxMovementDays
	}

	data, err := h.service.StatusMovement(days, middleware.ActorFrom(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch status movement"})
	}
	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

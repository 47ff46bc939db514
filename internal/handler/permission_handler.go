package handler

import (
	"eie-registry/internal/middleware"
	"eie-registry/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PermissionHandler struct {
	permissionService service.PermissionService
}

func NewPermissionHandler(permissionService service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// GetPermissions returns the caller's role and privileges
// GET /api/v1/permissions
func (h *PermissionHandler) GetPermissions(c *fiber.Ctx) error {
	return c.JSON(h.permissionService.For(middleware.ActorFrom(c)))
}

// GetRoles returns all available roles
// GET /api/v1/roles
func (h *PermissionHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.permissionService.Roles()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch roles"})
	}
	return c.JSON(roles)
}

// GetPrivileges lists every privilege
// GET /api/v1/privileges
func (h *PermissionHandler) GetPrivileges(c *fiber.Ctx) error {
	privileges, err := h.permissionService.Privileges()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
	}
	return c.JSON(privileges)
}

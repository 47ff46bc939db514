package handler

import (
	"eie-registry/internal/repository"
	"eie-registry/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService service.UserService
	logger      zerolog.Logger
}

func NewUserHandler(userService service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	creatorID, _ := c.Locals("user_id").(string)
	if creatorID == "" {
		creatorID = "system"
	}

	user, err := h.userService.CreateUser(&req, creatorID)
	if err != nil {
		return fail(c, h.logger, err, "Failed to create user")
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user.ToResponse(),
	})
}

// GetUsers returns a page of users
// GET /api/v1/users?organization_id=&role=&page=&size=
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{
		RoleCode: c.Query("role"),
		Page:     c.QueryInt("page", 0),
		Size:     c.QueryInt("size", repository.DefaultPageSize),
	}
	if raw := c.Query("organization_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid organization_id"})
		}
		filter.OrganizationID = &id
	}

	page, err := h.userService.GetUsers(filter)
	if err != nil {
		return fail(c, h.logger, err, "Failed to fetch users")
	}
	return c.JSON(page)
}

// GetUser returns a single user
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	user, err := h.userService.GetUserByID(id)
	if err != nil {
		return fail(c, h.logger, err, "Failed to fetch user")
	}
	return c.JSON(user)
}

package handler

import (
	"eie-registry/internal/middleware"
	"eie-registry/internal/repository"
	"eie-registry/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ProductHandler struct {
	productService service.ProductService
	logger         zerolog.Logger
}

func NewProductHandler(productService service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger.With().Str("handler", "product").Logger(),
	}
}

// GetProducts returns a filtered page of products
// GET /api/v1/products
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		Category:  c.Query("category"),
		Status:    c.Query("status"),
		Brand:     c.Query("brand"),
		Model:     c.Query("model"),
		EprelCode: c.Query("eprel_code"),
		GtinCode:  c.Query("gtin_code"),
		Page:      c.QueryInt("page", 0),
		Size:      c.QueryInt("size", repository.DefaultPageSize),
		Sort:      c.Query("sort"),
	}
	for param, dst := range map[string]**uuid.UUID{
		"product_file_id": &filter.ProductFileID,
		"organization_id": &filter.OrganizationID,
	} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid " + param})
		}
		*dst = &id
	}

	page, err := h.productService.List(filter, middleware.ActorFrom(c))
	if err != nil {
		return fail(c, h.logger, err, "Failed to fetch products")
	}
	return c.JSON(page)
}

// GetProduct returns one product with its review history
// GET /api/v1/products/:gtin
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	detail, err := h.productService.Get(c.Params("gtin"), middleware.ActorFrom(c))
	if err != nil {
		return fail(c, h.logger, err, "Failed to fetch product")
	}
	return c.JSON(detail)
}

// GetHistory returns the status history of one product
// GET /api/v1/products/:gtin/history
func (h *ProductHandler) GetHistory(c *fiber.Ctx) error {
	history, err := h.productService.History(c.Params("gtin"), middleware.ActorFrom(c))
	if err != nil {
		return fail(c, h.logger, err, "Failed to fetch product history")
	}
	return c.JSON(history)
}

// ChangeStatus applies a reviewer action to the selected products
// POST /api/v1/products/status/:action
func (h *ProductHandler) ChangeStatus(c *fiber.Ctx) error {
	var req service.StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	req.Action = c.Params("action")

	actor := middleware.ActorFrom(c)
	result, err := h.productService.ChangeStatus(req, actor)
	if err != nil {
		h.logger.Debug().Err(err).
			Str("action", req.Action).
			Str("user_id", actor.UserID.String()).
			Strs("gtin_codes", req.GtinCodes).
			Msg("status change failed")
		return fail(c, h.logger, err, "Failed to change product status")
	}
	return c.JSON(result)
}

package handler

import (
	"io"

	"eie-registry/internal/middleware"
	"eie-registry/internal/productfile"
	"eie-registry/internal/repository"
	"eie-registry/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ProductFileHandler struct {
	fileService service.ProductFileService
	maxBytes    int64
	logger      zerolog.Logger
}

func NewProductFileHandler(fileService service.ProductFileService, maxBytes int64, logger zerolog.Logger) *ProductFileHandler {
	return &ProductFileHandler{
		fileService: fileService,
		maxBytes:    maxBytes,
		logger:      logger.With().Str("handler", "product_file").Logger(),
	}
}

// readInput extracts the multipart "file" and "category" fields.
func (h *ProductFileHandler) readInput(c *fiber.Ctx) (service.FileInput, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return service.FileInput{}, fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return service.FileInput{}, productfile.ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return service.FileInput{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.FileInput{}, err
	}
	return service.FileInput{FileName: fh.Filename, Category: c.FormValue("category"), Data: data}, nil
}

func (h *ProductFileHandler) inputError(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return fail(c, h.logger, err, "Failed to read product file")
}

// Verify checks a product file without storing it
// POST /api/v1/product-files/verify
func (h *ProductFileHandler) Verify(c *fiber.Ctx) error {
	in, err := h.readInput(c)
	if err != nil {
		return h.inputError(c, err)
	}

	result, err := h.fileService.Verify(c.UserContext(), in, middleware.ActorFrom(c))
	if err != nil {
		return fail(c, h.logger, err, "Failed to verify product file")
	}
	if !result.Valid {
		return c.Status(400).JSON(result)
	}
	return c.JSON(result)
}

// Submit stores a product file and queues it for registration
// POST /api/v1/product-files
func (h *ProductFileHandler) Submit(c *fiber.Ctx) error {
	in, err := h.readInput(c)
	if err != nil {
		return h.inputError(c, err)
	}

	upload, result, err := h.fileService.Submit(c.UserContext(), in, middleware.ActorFrom(c))
	if err != nil {
		return fail(c, h.logger, err, "Failed to submit product file")
	}
	if upload == nil {
		return c.Status(400).JSON(result)
	}
	return c.Status(202).JSON(fiber.Map{
		"product_file_id": upload.ID,
		"upload_status":   upload.UploadStatus,
	})
}

// GetProductFiles returns a page of uploads
// GET /api/v1/product-files?upload_status=&page=&size=&sort=
func (h *ProductFileHandler) GetProductFiles(c *fiber.Ctx) error {
	filter := repository.UploadFilter{
		Status: c.Query("upload_status"),
		Page:   c.QueryInt("page", 0),
		Size:   c.QueryInt("size", repository.DefaultPageSize),
		Sort:   c.Query("sort"),
	}
	page, err := h.fileService.List(filter, middleware.ActorFrom(c))
	if err != nil {
		return fail(c, h.logger, err, "Failed to fetch product files")
	}
	return c.JSON(page)
}

// GetBatchList feeds the batch filter of the products page
// GET /api/v1/product-files/batch-list
func (h *ProductFileHandler) GetBatchList(c *fiber.Ctx) error {
	items, err := h.fileService.BatchList(middleware.ActorFrom(c))
	if err != nil {
		return fail(c, h.logger, err, "Failed to fetch batch list")
	}
	return c.JSON(items)
}

// GET /api/v1/product-files/:id
func (h *ProductFileHandler) GetProductFile(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product file ID"})
	}
	upload, err := h.fileService.Get(id, middleware.ActorFrom(c))
	if err != nil {
		return fail(c, h.logger, err, "Failed to fetch product file")
	}
	return c.JSON(upload)
}

// GetReport downloads the error report of an upload
// GET /api/v1/product-files/:id/report
func (h *ProductFileHandler) GetReport(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product file ID"})
	}
	data, name, err := h.fileService.Report(c.UserContext(), id, middleware.ActorFrom(c))
	if err != nil {
		return fail(c, h.logger, err, "Failed to fetch report")
	}
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(data)
}

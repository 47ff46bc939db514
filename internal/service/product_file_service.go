package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"eie-registry/internal/model"
	"eie-registry/internal/productfile"
	"eie-registry/internal/queue"
	"eie-registry/internal/repository"
	"eie-registry/internal/storage"
	"eie-registry/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// FileInput is a product file as received from the portal.
type FileInput struct {
	FileName string
	Category string
	Data     []byte
}

// VerifyResult is the outcome of the synchronous file check.
type VerifyResult struct {
	Valid  bool                   `json:"valid"`
	Rows   int                    `json:"rows"`
	Errors []productfile.RowError `json:"errors,omitempty"`
}

type ProductFileService interface {
	Verify(ctx context.Context, in FileInput, actor Actor) (*VerifyResult, error)
	Submit(ctx context.Context, in FileInput, actor Actor) (*model.Upload, *VerifyResult, error)
	List(filter repository.UploadFilter, actor Actor) (model.Page[model.Upload], error)
	BatchList(actor Actor) ([]model.BatchItem, error)
	Get(id uuid.UUID, actor Actor) (*model.Upload, error)
	Report(ctx context.Context, id uuid.UUID, actor Actor) ([]byte, string, error)
}

type FileLimits struct {
	MaxBytes int64
	MaxRows  int
}

type productFileService struct {
	uploadRepo  repository.UploadRepository
	productRepo repository.ProductRepository
	store       storage.ObjectStore
	enqueuer    queue.Enqueuer
	limits      FileLimits
	wsHub       *ws.Hub
	logger      zerolog.Logger
}

func NewProductFileService(
	uploadRepo repository.UploadRepository,
	productRepo repository.ProductRepository,
	store storage.ObjectStore,
	enqueuer queue.Enqueuer,
	limits FileLimits,
	hub *ws.Hub,
	logger zerolog.Logger,
) ProductFileService {
	return &productFileService{
		uploadRepo:  uploadRepo,
		productRepo: productRepo,
		store:       store,
		enqueuer:    enqueuer,
		limits:      limits,
		wsHub:       hub,
		logger:      logger.With().Str("service", "product_file").Logger(),
	}
}

// Verify checks a file without persisting anything. Structural problems
// (size, extension, header, row count) are returned as errors; row problems
// are reported in the result.
func (s *productFileService) Verify(ctx context.Context, in FileInput, actor Actor) (*VerifyResult, error) {
	_, result, err := s.check(in, actor)
	return result, err
}

func (s *productFileService) check(in FileInput, actor Actor) (model.Category, *VerifyResult, error) {
	if actor.OrgID == nil {
		return "", nil, ErrNoOrganization
	}
	category, ok := model.ParseCategory(strings.ToUpper(strings.TrimSpace(in.Category)))
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidCategory, in.Category)
	}
	if s.limits.MaxBytes > 0 && int64(len(in.Data)) > s.limits.MaxBytes {
		return "", nil, productfile.ErrFileTooLarge
	}
	if !strings.EqualFold(filepath.Ext(in.FileName), ".csv") {
		return "", nil, productfile.ErrNotCSV
	}

	rows, err := productfile.Parse(in.Data, category, s.limits.MaxRows)
	if err != nil {
		return "", nil, err
	}

	errs := productfile.ValidateRows(rows, category)
	registered, err := s.registeredGTINs(rows)
	if err != nil {
		return "", nil, err
	}
	errs = append(errs, registered...)

	return category, &VerifyResult{Valid: len(errs) == 0, Rows: len(rows), Errors: errs}, nil
}

func (s *productFileService) registeredGTINs(rows []productfile.Row) ([]productfile.RowError, error) {
	codes := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.GtinCode != "" {
			codes = append(codes, r.GtinCode)
		}
	}
	existing, err := s.productRepo.ExistingGTINs(codes)
	if err != nil {
		return nil, err
	}
	return registeredRowErrors(rows, existing), nil
}

func registeredRowErrors(rows []productfile.Row, existing []string) []productfile.RowError {
	taken := make(map[string]bool, len(existing))
	for _, g := range existing {
		taken[g] = true
	}
	var out []productfile.RowError
	for _, r := range rows {
		if taken[r.GtinCode] {
			out = append(out, productfile.RowError{
				Row:     r.Line,
				Field:   productfile.ColGtin,
				Message: "codice GTIN già registrato",
			})
		}
	}
	return out
}

// Submit verifies the file, stores it and queues it for processing. When the
// file has row errors nothing is stored and the upload is nil.
func (s *productFileService) Submit(ctx context.Context, in FileInput, actor Actor) (*model.Upload, *VerifyResult, error) {
	category, result, err := s.check(in, actor)
	if err != nil || !result.Valid {
		return nil, result, err
	}

	upload := &model.Upload{
		FileName:           filepath.Base(in.FileName),
		Category:           category,
		UploadStatus:       model.UploadUploaded,
		FindProductsNumber: result.Rows,
		OrganizationID:     *actor.OrgID,
		OrganizationName:   actor.OrgName,
		UploadedByUserID:   actor.UserID,
	}
	upload.ID = uuid.New()
	upload.CreatedBy = actor.UserID.String()
	upload.UpdatedBy = actor.UserID.String()
	upload.ObjectKey = storage.UploadKey(upload.OrganizationID.String(), upload.ID.String(), upload.FileName)

	if err := s.store.Put(ctx, upload.ObjectKey, in.Data, "text/csv"); err != nil {
		return nil, nil, fmt.Errorf("store product file: %w", err)
	}
	if err := s.uploadRepo.Create(upload); err != nil {
		return nil, nil, fmt.Errorf("create upload: %w", err)
	}
	if err := s.enqueuer.EnqueueProcess(ctx, queue.ProcessPayload{UploadID: upload.ID.String()}); err != nil {
		return nil, nil, fmt.Errorf("enqueue upload %s: %w", upload.ID, err)
	}

	s.logger.Info().
		Str("upload_id", upload.ID.String()).
		Str("category", string(category)).
		Int("rows", result.Rows).
		Str("user_id", actor.UserID.String()).
		Msg("product file submitted")

	s.wsHub.Publish(ws.EventUploadStatusChanged, uploadEvent(upload))
	return upload, result, nil
}

func (s *productFileService) List(filter repository.UploadFilter, actor Actor) (model.Page[model.Upload], error) {
	if scope := actor.Scope(model.PrivUploadViewAll); scope != nil {
		filter.OrganizationID = scope
	}
	filter.Page, filter.Size = repository.NormalizePage(filter.Page, filter.Size)

	uploads, total, err := s.uploadRepo.List(filter)
	if err != nil {
		return model.Page[model.Upload]{}, err
	}
	return model.NewPage(uploads, filter.Page, filter.Size, total), nil
}

func (s *productFileService) BatchList(actor Actor) ([]model.BatchItem, error) {
	items, err := s.uploadRepo.BatchList(actor.Scope(model.PrivUploadViewAll))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.BatchItem{}
	}
	return items, nil
}

func (s *productFileService) Get(id uuid.UUID, actor Actor) (*model.Upload, error) {
	upload, err := s.uploadRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}
	if !actor.Sees(model.PrivUploadViewAll, upload.OrganizationID) {
		return nil, ErrUploadNotFound
	}
	return upload, nil
}

// Report returns the error report and the file name to download it as.
func (s *productFileService) Report(ctx context.Context, id uuid.UUID, actor Actor) ([]byte, string, error) {
	upload, err := s.Get(id, actor)
	if err != nil {
		return nil, "", err
	}
	if !upload.HasReport {
		return nil, "", ErrReportNotFound
	}
	data, err := s.store.Get(ctx, upload.ReportKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, "", ErrReportNotFound
	}
	if err != nil {
		return nil, "", err
	}
	name := strings.TrimSuffix(upload.FileName, filepath.Ext(upload.FileName)) + "_errori.csv"
	return data, name, nil
}

func uploadEvent(u *model.Upload) map[string]interface{} {
	return map[string]interface{}{
		"product_file_id":       u.ID,
		"organization_id":       u.OrganizationID,
		"file_name":             u.FileName,
		"upload_status":         u.UploadStatus,
		"find_products_number":  u.FindProductsNumber,
		"added_products_number": u.AddedProductsNumber,
	}
}

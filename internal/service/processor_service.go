package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"eie-registry/internal/eprel"
	"eie-registry/internal/model"
	"eie-registry/internal/productfile"
	"eie-registry/internal/repository"
	"eie-registry/internal/storage"
	"eie-registry/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// UploadProcessor turns a submitted product file into products.
type UploadProcessor interface {
	Process(ctx context.Context, uploadID uuid.UUID) error
}

type uploadProcessor struct {
	uploadRepo  repository.UploadRepository
	productRepo repository.ProductRepository
	store       storage.ObjectStore
	lookup      eprel.Lookup
	db          *gorm.DB
	notifier    ws.Notifier
	logger      zerolog.Logger
}

type lastAttemptKey struct{}

// LastAttempt marks ctx as the final try for an upload. Process then reports
// EPREL outages as row failures and never leaves the upload IN_PROGRESS.
func LastAttempt(ctx context.Context) context.Context {
	return context.WithValue(ctx, lastAttemptKey{}, true)
}

func IsLastAttempt(ctx context.Context) bool {
	last, _ := ctx.Value(lastAttemptKey{}).(bool)
	return last
}

// NewUploadProcessor builds the processor. lookup may be nil, in which case
// rows are registered without EPREL enrichment. notifier may be nil too.
func NewUploadProcessor(
	uploadRepo repository.UploadRepository,
	productRepo repository.ProductRepository,
	store storage.ObjectStore,
	lookup eprel.Lookup,
	db *gorm.DB,
	notifier ws.Notifier,
	logger zerolog.Logger,
) UploadProcessor {
	return &uploadProcessor{
		uploadRepo:  uploadRepo,
		productRepo: productRepo,
		store:       store,
		lookup:      lookup,
		db:          db,
		notifier:    notifier,
		logger:      logger.With().Str("service", "upload_processor").Logger(),
	}
}

// Process is safe to retry: finished uploads are skipped, and EPREL outages
// return an error so the queue tries again later. On the last attempt every
// failure ends the upload as EPREL_ERROR.
func (p *uploadProcessor) Process(ctx context.Context, uploadID uuid.UUID) error {
	log := p.logger.With().Str("upload_id", uploadID.String()).Logger()

	upload, err := p.uploadRepo.FindByID(uploadID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrUploadNotFound, uploadID)
	}
	if err != nil {
		return err
	}
	if upload.Terminal() {
		log.Debug().Str("upload_status", string(upload.UploadStatus)).Msg("upload already processed")
		return nil
	}

	err = p.process(ctx, log, upload)
	if err == nil || !IsLastAttempt(ctx) {
		return err
	}
	log.Error().Err(err).Msg("giving up on product file")
	if ferr := p.uploadRepo.Finish(p.db, upload.ID, model.UploadEprelError, 0, ""); ferr != nil {
		return errors.Join(err, ferr)
	}
	upload.UploadStatus = model.UploadEprelError
	upload.AddedProductsNumber = 0
	p.notify(upload)
	return err
}

func (p *uploadProcessor) process(ctx context.Context, log zerolog.Logger, upload *model.Upload) error {
	if err := p.uploadRepo.UpdateStatus(upload.ID, model.UploadInProgress); err != nil {
		return err
	}
	upload.UploadStatus = model.UploadInProgress
	p.notify(upload)

	data, err := p.store.Get(ctx, upload.ObjectKey)
	if err != nil {
		return fmt.Errorf("read product file: %w", err)
	}

	rows, err := productfile.Parse(data, upload.Category, 0)
	if err != nil {
		log.Error().Err(err).Msg("stored product file is unreadable")
		return p.finish(ctx, upload, nil, nil)
	}

	failures, valid, err := p.screen(ctx, upload.Category, rows)
	if err != nil {
		return err
	}

	now := time.Now()
	products := make([]model.Product, 0, len(valid))
	for _, c := range valid {
		product := model.Product{
			GtinCode:            c.row.GtinCode,
			EprelCode:           c.row.EprelCode,
			ProductCode:         c.row.ProductCode,
			Category:            upload.Category,
			CountryOfProduction: c.row.Country,
			Brand:               c.row.Brand,
			Model:               c.row.Model,
			Status:              model.StatusUploaded,
			OrganizationID:      upload.OrganizationID,
			OrganizationName:    upload.OrganizationName,
			ProductFileID:       upload.ID,
			RegistrationDate:    now,
		}
		if c.eprel != nil {
			product.Brand = c.eprel.Brand
			product.Model = c.eprel.Model
			product.EnergyClass = c.eprel.EnergyClass
		}
		product.CreatedBy = upload.UploadedByUserID.String()
		product.UpdatedBy = upload.UploadedByUserID.String()
		products = append(products, product)
	}

	return p.finish(ctx, upload, products, failures)
}

type candidate struct {
	row   productfile.Row
	eprel *eprel.Product
}

// screen splits rows into registrable candidates and report failures.
func (p *uploadProcessor) screen(ctx context.Context, category model.Category, rows []productfile.Row) ([]productfile.Failure, []candidate, error) {
	errs := productfile.ValidateRows(rows, category)

	codes := make([]string, len(rows))
	for i, r := range rows {
		codes[i] = r.GtinCode
	}
	existing, err := p.productRepo.ExistingGTINs(codes)
	if err != nil {
		return nil, nil, err
	}
	errs = append(errs, registeredRowErrors(rows, existing)...)

	failures := productfile.FailuresFromErrors(rows, errs)
	rejected := productfile.GroupByRow(errs)

	var valid []candidate
	for _, r := range rows {
		if _, bad := rejected[r.Line]; bad {
			continue
		}
		if !category.HasEPREL() || p.lookup == nil {
			valid = append(valid, candidate{row: r})
			continue
		}

		reg, reason, err := p.checkEPREL(ctx, category, r.EprelCode)
		if err != nil {
			return nil, nil, err
		}
		if reason != "" {
			failures = append(failures, productfile.Failure{Row: r, Reason: productfile.ColEprel + ": " + reason})
			continue
		}
		valid = append(valid, candidate{row: r, eprel: reg})
	}
	return failures, valid, nil
}

// checkEPREL returns a reason when the registration cannot be used. The only
// error is an EPREL outage before the last attempt.
func (p *uploadProcessor) checkEPREL(ctx context.Context, category model.Category, code string) (*eprel.Product, string, error) {
	reg, err := p.lookup.Product(ctx, code)
	switch {
	case errors.Is(err, eprel.ErrNotFound):
		return nil, "codice non trovato su EPREL", nil
	case errors.Is(err, eprel.ErrUnavailable) && !IsLastAttempt(ctx):
		return nil, "", fmt.Errorf("eprel lookup %s: %w", code, err)
	case errors.Is(err, eprel.ErrUnavailable):
		return nil, "servizio EPREL non raggiungibile", nil
	case err != nil:
		p.logger.Warn().Err(err).Str("eprel_code", code).Msg("eprel lookup failed")
		return nil, "verifica EPREL non riuscita", nil
	}
	if !reg.Published() {
		return nil, "registrazione EPREL non pubblicata", nil
	}
	if got, ok := reg.Category(); !ok || got != category {
		return nil, fmt.Sprintf("gruppo EPREL %q diverso dalla categoria %s", reg.ProductGroup, category), nil
	}
	return reg, "", nil
}

func (p *uploadProcessor) finish(ctx context.Context, upload *model.Upload, products []model.Product, failures []productfile.Failure) error {
	status := model.UploadLoaded
	reportKey := ""
	if len(failures) > 0 || len(products) == 0 {
		status = model.UploadEprelError
	}
	if len(failures) > 0 {
		sort.SliceStable(failures, func(i, j int) bool { return failures[i].Row.Line < failures[j].Row.Line })
		report, err := productfile.BuildReport(upload.Category, failures)
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}
		reportKey = storage.ReportKey(upload.OrganizationID.String(), upload.ID.String())
		if err := p.store.Put(ctx, reportKey, report, "text/csv"); err != nil {
			return fmt.Errorf("store report: %w", err)
		}
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := p.productRepo.CreateBatch(tx, products); err != nil {
			return err
		}
		return p.uploadRepo.Finish(tx, upload.ID, status, len(products), reportKey)
	})
	if err != nil {
		return fmt.Errorf("register products: %w", err)
	}

	upload.UploadStatus = status
	upload.AddedProductsNumber = len(products)
	upload.ReportKey = reportKey
	upload.HasReport = reportKey != ""

	p.logger.Info().
		Str("upload_id", upload.ID.String()).
		Str("upload_status", string(status)).
		Int("added", len(products)).
		Int("failed", len(failures)).
		Msg("product file processed")

	p.notify(upload)
	return nil
}

func (p *uploadProcessor) notify(upload *model.Upload) {
	if p.notifier != nil {
		p.notifier.Publish(ws.EventUploadStatusChanged, uploadEvent(upload))
	}
}

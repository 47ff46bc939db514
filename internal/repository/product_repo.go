package repository

import (
	"strings"
	"time"

	"eie-registry/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ProductFilter narrows the products list. OrganizationID is always set for
// producers so they only see their own catalogue.
type ProductFilter struct {
	Category       string
	Status         string
	Brand          string
	Model          string
	EprelCode      string
	GtinCode       string
	ProductFileID  *uuid.UUID
	OrganizationID *uuid.UUID
	Page           int
	Size           int
	Sort           string
}

// StatusCount is one bucket of the per-status counters.
type StatusCount struct {
	Status model.ProductStatus `json:"status"`
	Count  int64               `json:"count"`
}

type ProductRepository interface {
	CreateBatch(tx *gorm.DB, products []model.Product) error
	List(filter ProductFilter) ([]model.Product, int64, error)
	FindByGTIN(gtin string) (*model.Product, error)
	FindByGTINs(tx *gorm.DB, gtins []string) ([]model.Product, error)
	ExistingGTINs(gtins []string) ([]string, error)
	UpdateStatusIf(tx *gorm.DB, id uuid.UUID, from, to model.ProductStatus, motivation, updatedBy string) (bool, error)
	CountByStatus(orgID *uuid.UUID) ([]StatusCount, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

var productSortColumns = map[string]string{
	"gtin_code":         "gtin_code",
	"gtinCode":          "gtin_code",
	"eprel_code":        "eprel_code",
	"eprelCode":         "eprel_code",
	"category":          "category",
	"status":            "status",
	"brand":             "brand",
	"model":             "model",
	"energy_class":      "energy_class",
	"energyClass":       "energy_class",
	"registration_date": "registration_date",
	"registrationDate":  "registration_date",
	"created_at":        "created_at",
}

// CreateBatch receives tx so product rows and the upload update commit together
func (r *productRepo) CreateBatch(tx *gorm.DB, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	return tx.CreateInBatches(&products, 100).Error
}

func (r *productRepo) List(f ProductFilter) ([]model.Product, int64, error) {
	q := r.db.Model(&model.Product{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Brand != "" {
		q = q.Where("LOWER(brand) LIKE ?", "%"+strings.ToLower(f.Brand)+"%")
	}
	if f.Model != "" {
		q = q.Where("LOWER(model) LIKE ?", "%"+strings.ToLower(f.Model)+"%")
	}
	if f.EprelCode != "" {
		q = q.Where("eprel_code = ?", f.EprelCode)
	}
	if f.GtinCode != "" {
		q = q.Where("gtin_code LIKE ?", f.GtinCode+"%")
	}
	if f.ProductFileID != nil {
		q = q.Where("product_file_id = ?", *f.ProductFileID)
	}
	if f.OrganizationID != nil {
		q = q.Where("organization_id = ?", *f.OrganizationID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	err := q.Order(orderClause(f.Sort, productSortColumns, "registration_date DESC")).
		Offset(f.Page * f.Size).
		Limit(f.Size).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) FindByGTIN(gtin string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "gtin_code = ?", gtin).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByGTINs(tx *gorm.DB, gtins []string) ([]model.Product, error) {
	var products []model.Product
	err := tx.Where("gtin_code IN ?", gtins).Find(&products).Error
	return products, err
}

func (r *productRepo) ExistingGTINs(gtins []string) ([]string, error) {
	if len(gtins) == 0 {
		return nil, nil
	}
	var found []string
	err := r.db.Model(&model.Product{}).Where("gtin_code IN ?", gtins).Pluck("gtin_code", &found).Error
	return found, err
}

// UpdateStatusIf moves a product only while it is still in from. It reports
// false when another reviewer changed the product first.
func (r *productRepo) UpdateStatusIf(tx *gorm.DB, id uuid.UUID, from, to model.ProductStatus, motivation, updatedBy string) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"motivation": motivation,
			"updated_by": updatedBy,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) CountByStatus(orgID *uuid.UUID) ([]StatusCount, error) {
	q := r.db.Model(&model.Product{}).Select("status, COUNT(*) AS count").Group("status")
	if orgID != nil {
		q = q.Where("organization_id = ?", *orgID)
	}

	var rows []StatusCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	// every status is reported, even when empty
	counts := make(map[model.ProductStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	out := make([]StatusCount, len(model.ProductStatuses))
	for i, s := range model.ProductStatuses {
		out[i] = StatusCount{Status: s, Count: counts[s]}
	}
	return out, nil
}

// orderClause turns "field,desc" into a whitelisted ORDER BY expression.
func orderClause(sort string, allowed map[string]string, def string) string {
	if sort == "" {
		return def
	}
	field, dir, _ := strings.Cut(sort, ",")
	col, ok := allowed[strings.TrimSpace(field)]
	if !ok {
		return def
	}
	if strings.EqualFold(strings.TrimSpace(dir), "desc") {
		return col + " DESC"
	}
	return col + " ASC"
}

// NormalizePage clamps page and size to sane bounds.
func NormalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

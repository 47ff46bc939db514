package repository

import (
	"time"

	"eie-registry/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadFilter struct {
	OrganizationID *uuid.UUID
	Status         string
	Page           int
	Size           int
	Sort           string
}

type UploadRepository interface {
	Create(upload *model.Upload) error
	FindByID(id uuid.UUID) (*model.Upload, error)
	List(filter UploadFilter) ([]model.Upload, int64, error)
	BatchList(orgID *uuid.UUID) ([]model.BatchItem, error)
	UpdateStatus(id uuid.UUID, status model.UploadStatus) error
	Finish(tx *gorm.DB, id uuid.UUID, status model.UploadStatus, added int, reportKey string) error
}

type uploadRepo struct {
	db *gorm.DB
}

func NewUploadRepo(db *gorm.DB) UploadRepository {
	return &uploadRepo{db}
}

var uploadSortColumns = map[string]string{
	"created_at":    "created_at",
	"createdAt":     "created_at",
	"file_name":     "file_name",
	"fileName":      "file_name",
	"upload_status": "upload_status",
	"uploadStatus":  "upload_status",
	"category":      "category",
}

func (r *uploadRepo) Create(upload *model.Upload) error {
	return r.db.Create(upload).Error
}

func (r *uploadRepo) FindByID(id uuid.UUID) (*model.Upload, error) {
	var upload model.Upload
	if err := r.db.First(&upload, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

func (r *uploadRepo) List(f UploadFilter) ([]model.Upload, int64, error) {
	q := r.db.Model(&model.Upload{})
	if f.OrganizationID != nil {
		q = q.Where("organization_id = ?", *f.OrganizationID)
	}
	if f.Status != "" {
		q = q.Where("upload_status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var uploads []model.Upload
	err := q.Order(orderClause(f.Sort, uploadSortColumns, "created_at DESC")).
		Offset(f.Page * f.Size).
		Limit(f.Size).
		Find(&uploads).Error
	return uploads, total, err
}

func (r *uploadRepo) BatchList(orgID *uuid.UUID) ([]model.BatchItem, error) {
	q := r.db.Model(&model.Upload{}).
		Select("id, file_name AS name").
		Where("upload_status IN ?", []model.UploadStatus{model.UploadLoaded, model.UploadEprelError}).
		Where("added_products_number > 0")
	if orgID != nil {
		q = q.Where("organization_id = ?", *orgID)
	}

	var items []model.BatchItem
	err := q.Order("created_at DESC").Scan(&items).Error
	return items, err
}

func (r *uploadRepo) UpdateStatus(id uuid.UUID, status model.UploadStatus) error {
	return r.db.Model(&model.Upload{}).Where("id = ?", id).Updates(map[string]interface{}{
		"upload_status": status,
		"updated_at":    time.Now(),
	}).Error
}

// Finish is called in the transaction that stores the loaded products
func (r *uploadRepo) Finish(tx *gorm.DB, id uuid.UUID, status model.UploadStatus, added int, reportKey string) error {
	now := time.Now()
	return tx.Model(&model.Upload{}).Where("id = ?", id).Updates(map[string]interface{}{
		"upload_status":         status,
		"added_products_number": added,
		"report_key":            reportKey,
		"processed_at":          &now,
		"updated_at":            now,
	}).Error
}

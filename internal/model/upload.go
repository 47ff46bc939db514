package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadStatus string

const (
	UploadInProgress UploadStatus = "IN_PROGRESS"
	UploadUploaded   UploadStatus = "UPLOADED"
	UploadEprelError UploadStatus = "EPREL_ERROR"
	UploadLoaded     UploadStatus = "LOADED"
)

// Upload is one submitted product file (a batch).
type Upload struct {
	BaseModel
	FileName            string       `gorm:"type:varchar(255);not null" json:"file_name"`
	Category            Category     `gorm:"type:varchar(30);not null" json:"category"`
	UploadStatus        UploadStatus `gorm:"type:varchar(20);not null;index" json:"upload_status"`
	FindProductsNumber  int          `json:"find_products_number"`
	AddedProductsNumber int          `json:"added_products_number"`
	ObjectKey           string       `gorm:"type:varchar(255)" json:"-"`
	ReportKey           string       `gorm:"type:varchar(255)" json:"-"`
	HasReport           bool         `gorm:"-" json:"has_report"`
	OrganizationID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"organization_id"`
	OrganizationName    string       `gorm:"type:varchar(255)" json:"organization_name"`
	UploadedByUserID    uuid.UUID    `gorm:"type:uuid" json:"uploaded_by_user_id"`
	ProcessedAt         *time.Time   `json:"processed_at,omitempty"`
}

// AfterFind fills the derived HasReport flag.
func (u *Upload) AfterFind(tx *gorm.DB) error {
	u.HasReport = u.ReportKey != ""
	return nil
}

// Terminal reports whether processing has finished.
func (u *Upload) Terminal() bool {
	return u.UploadStatus == UploadLoaded || u.UploadStatus == UploadEprelError
}

// BatchItem feeds the batch filter drop-down.
type BatchItem struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

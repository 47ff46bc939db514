package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel handles ID (UUID) and standard audit trails
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CreatedBy string `gorm:"type:varchar(255)" json:"created_by,omitempty"`
	UpdatedBy string `gorm:"type:varchar(255)" json:"updated_by,omitempty"`
	DeletedBy string `gorm:"type:varchar(255)" json:"-"`
}

// BeforeCreate assigns a UUID unless the caller already chose one.
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}

// Page is the paginated envelope returned by list endpoints.
type Page[T any] struct {
	Content       []T   `json:"content"`
	PageNo        int   `json:"page_no"`
	PageSize      int   `json:"page_size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

func NewPage[T any](content []T, page, size int, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return Page[T]{
		Content:       content,
		PageNo:        page,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

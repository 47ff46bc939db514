package repository

import (
	"strings"

	"eie-registry/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InstitutionRepository interface {
	Create(inst *model.Institution) error
	FindByID(id uuid.UUID) (*model.Institution, error)
	FindByFiscalCode(code string) (*model.Institution, error)
	List(name string, page, size int) ([]model.Institution, int64, error)
}

type institutionRepo struct {
	db *gorm.DB
}

func NewInstitutionRepo(db *gorm.DB) InstitutionRepository {
	return &institutionRepo{db}
}

func (r *institutionRepo) Create(inst *model.Institution) error {
	return r.db.Create(inst).Error
}

func (r *institutionRepo) FindByID(id uuid.UUID) (*model.Institution, error) {
	var inst model.Institution
	if err := r.db.First(&inst, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *institutionRepo) FindByFiscalCode(code string) (*model.Institution, error) {
	var inst model.Institution
	if err := r.db.First(&inst, "fiscal_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *institutionRepo) List(name string, page, size int) ([]model.Institution, int64, error) {
	q := r.db.Model(&model.Institution{})
	if name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Institution
	err := q.Order("name ASC").Offset(page * size).Limit(size).Find(&items).Error
	return items, total, err
}

package service

import (
	"errors"

	"eie-registry/internal/model"
	"eie-registry/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InstitutionService interface {
	List(name string, page, size int) (model.Page[model.Institution], error)
	Get(id uuid.UUID, actor Actor) (*model.Institution, error)
}

type institutionService struct {
	institutionRepo repository.InstitutionRepository
}

func NewInstitutionService(institutionRepo repository.InstitutionRepository) InstitutionService {
	return &institutionService{institutionRepo: institutionRepo}
}

func (s *institutionService) List(name string, page, size int) (model.Page[model.Institution], error) {
	page, size = repository.NormalizePage(page, size)
	items, total, err := s.institutionRepo.List(name, page, size)
	if err != nil {
		return model.Page[model.Institution]{}, err
	}
	return model.NewPage(items, page, size, total), nil
}

// Get lets producers read only their own organization.
func (s *institutionService) Get(id uuid.UUID, actor Actor) (*model.Institution, error) {
	if !actor.Sees(model.PrivInstitutionView, id) {
		return nil, ErrInstitutionNotFound
	}
	inst, err := s.institutionRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInstitutionNotFound
	}
	return inst, err
}

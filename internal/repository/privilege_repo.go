package repository

import (
	"errors"

	"eie-registry/internal/model"

	"gorm.io/gorm"
)

type PrivilegeRepository interface {
	FindByCodes(codes []string) ([]model.Privilege, error)
	FindAll() ([]model.Privilege, error)
	SeedDefaults() error
}

type privilegeRepo struct {
	db *gorm.DB
}

func NewPrivilegeRepo(db *gorm.DB) PrivilegeRepository {
	return &privilegeRepo{db}
}

func (r *privilegeRepo) FindByCodes(codes []string) ([]model.Privilege, error) {
	var privileges []model.Privilege
	if err := r.db.Where("code IN ?", codes).Order("code ASC").Find(&privileges).Error; err != nil {
		return nil, err
	}
	return privileges, nil
}

func (r *privilegeRepo) FindAll() ([]model.Privilege, error) {
	var privileges []model.Privilege
	if err := r.db.Order("code ASC").Find(&privileges).Error; err != nil {
		return nil, err
	}
	return privileges, nil
}

// SeedDefaults creates missing privileges and refreshes their names.
func (r *privilegeRepo) SeedDefaults() error {
	for _, p := range model.DefaultPrivileges {
		var existing model.Privilege
		err := r.db.Where("code = ?", p.Code).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			p := p
			if err := r.db.Create(&p).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case existing.Name != p.Name:
			if err := r.db.Model(&existing).Update("name", p.Name).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

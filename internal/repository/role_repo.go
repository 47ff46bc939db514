package repository

import (
	"errors"

	"eie-registry/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll() ([]model.Role, error)
	FindByCode(code string) (*model.Role, error)
	SeedDefaults() error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll() ([]model.Role, error) {
	var roles []model.Role
	err := r.db.Preload("Privileges").Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByCode(code string) (*model.Role, error) {
	var role model.Role
	err := r.db.Preload("Privileges").Where("code = ?", code).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// SeedDefaults creates the three organization roles and, when a role has no
// privileges yet, grants its default set. Privileges must be seeded first.
func (r *roleRepo) SeedDefaults() error {
	for _, defaultRole := range model.DefaultRoles {
		var role model.Role
		err := r.db.Preload("Privileges").Where("code = ?", defaultRole.Code).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = defaultRole
			if err := r.db.Create(&role).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if len(role.Privileges) > 0 {
			continue
		}
		privileges, err := NewPrivilegeRepo(r.db).FindByCodes(model.DefaultPrivilegeCodes(role.Code))
		if err != nil {
			return err
		}
		if err := r.db.Model(&role).Association("Privileges").Replace(privileges); err != nil {
			return err
		}
	}
	return nil
}

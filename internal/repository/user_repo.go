package repository

import (
	"time"

	"eie-registry/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserFilter struct {
	OrganizationID *uuid.UUID
	RoleCode       string
	Page           int
	Size           int
}

type UserRepository interface {
	FindByEmail(email string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)
	Create(user *model.User) error
	Update(user *model.User) error
	UpdatePassword(userID uuid.UUID, hashedPassword string) error
	List(filter UserFilter) ([]model.User, int64, error)
	UpdateTokenVersion(userID uuid.UUID, version string) error
	RecordLogin(userID uuid.UUID, version string) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) preloaded() *gorm.DB {
	return r.db.Preload("Role").Preload("Privileges").Preload("Organization")
}

func (r *userRepo) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.preloaded().Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.preloaded().First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepo) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *userRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("password", hashedPassword).Error
}

func (r *userRepo) List(f UserFilter) ([]model.User, int64, error) {
	q := r.db.Model(&model.User{})
	if f.OrganizationID != nil {
		q = q.Where("organization_id = ?", *f.OrganizationID)
	}
	if f.RoleCode != "" {
		q = q.Where("role_id IN (?)", r.db.Model(&model.Role{}).Select("id").Where("code = ?", f.RoleCode))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := q.Preload("Role").Preload("Privileges").Preload("Organization").
		Order("email ASC").
		Offset(f.Page * f.Size).
		Limit(f.Size).
		Find(&users).Error
	return users, total, err
}

func (r *userRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("token_version", version).Error
}

// RecordLogin rotates the session version and stamps the login time.
func (r *userRepo) RecordLogin(userID uuid.UUID, version string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"token_version": version,
		"last_login_at": time.Now(),
	}).Error
}

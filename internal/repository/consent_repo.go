package repository

import (
	"errors"
	"time"

	"eie-registry/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConsentRepository interface {
	Find(userID uuid.UUID, version int) (*model.Consent, error)
	Accept(userID uuid.UUID, version int) (*model.Consent, error)
}

type consentRepo struct {
	db *gorm.DB
}

func NewConsentRepo(db *gorm.DB) ConsentRepository {
	return &consentRepo{db}
}

// Find returns nil, nil when the user has not accepted version.
func (r *consentRepo) Find(userID uuid.UUID, version int) (*model.Consent, error) {
	var c model.Consent
	err := r.db.Where("user_id = ? AND version = ?", userID, version).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Accept is idempotent: a second call keeps the first acceptance time.
func (r *consentRepo) Accept(userID uuid.UUID, version int) (*model.Consent, error) {
	c := model.Consent{UserID: userID, Version: version, AcceptedAt: time.Now()}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "version"}},
		DoNothing: true,
	}).Create(&c).Error
	if err != nil {
		return nil, err
	}
	return r.Find(userID, version)
}

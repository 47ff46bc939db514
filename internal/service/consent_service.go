package service

import (
	"eie-registry/internal/model"
	"eie-registry/internal/repository"

	"github.com/google/uuid"
)

// ConsentService tracks acceptance of the current terms-of-service version.
type ConsentService interface {
	Status(userID uuid.UUID) (*model.ConsentStatus, error)
	Accept(userID uuid.UUID) (*model.ConsentStatus, error)
	Version() int
}

type consentService struct {
	consentRepo repository.ConsentRepository
	version     int
}

func NewConsentService(consentRepo repository.ConsentRepository, version int) ConsentService {
	return &consentService{consentRepo: consentRepo, version: version}
}

func (s *consentService) Version() int {
	return s.version
}

func (s *consentService) Status(userID uuid.UUID) (*model.ConsentStatus, error) {
	c, err := s.consentRepo.Find(userID, s.version)
	if err != nil {
		return nil, err
	}
	return statusOf(c, s.version), nil
}

func (s *consentService) Accept(userID uuid.UUID) (*model.ConsentStatus, error) {
	c, err := s.consentRepo.Accept(userID, s.version)
	if err != nil {
		return nil, err
	}
	return statusOf(c, s.version), nil
}

func statusOf(c *model.Consent, version int) *model.ConsentStatus {
	if c == nil {
		return &model.ConsentStatus{Version: version}
	}
	at := c.AcceptedAt
	return &model.ConsentStatus{Accepted: true, Version: version, AcceptedAt: &at}
}

package service

import (
	"time"

	"eie-registry/internal/model"
	"eie-registry/internal/repository"
)

const (
	DefaultMovementDays = 7
	MaxMovementDays     = 90
)

type StatsService interface {
	ProductCounts(actor Actor) ([]repository.StatusCount, error)
	StatusMovement(days int, actor Actor) ([]repository.StatusMovementData, error)
}

type statsService struct {
	productRepo repository.ProductRepository
	historyRepo repository.StatusHistoryRepository
}

func NewStatsService(productRepo repository.ProductRepository, historyRepo repository.StatusHistoryRepository) StatsService {
	return &statsService{productRepo: productRepo, historyRepo: historyRepo}
}

func (s *statsService) ProductCounts(actor Actor) ([]repository.StatusCount, error) {
	return s.productRepo.CountByStatus(actor.Scope(model.PrivProductViewAll))
}

func (s *statsService) StatusMovement(days int, actor Actor) ([]repository.StatusMovementData, error) {
	if days <= 0 {
		days = DefaultMovementDays
	}
	if days > MaxMovementDays {
		days = MaxMovementDays
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.historyRepo.GetStatusMovement(startDate, endDate, actor.Scope(model.PrivProductViewAll))
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []repository.StatusMovementData{}
	}
	return data, nil
}

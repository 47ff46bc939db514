package repository

import (
	"context"
	"fmt"
	"time"

	"eie-registry/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository interface {
	Add(tx *gorm.DB, events []*model.OutboxEvent) error
	GetPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id int64) error
	ListAfter(ctx context.Context, afterID int64, eventType string, limit int) ([]model.OutboxEvent, error)
	LastID(ctx context.Context) (int64, error)
}

type outboxRepo struct {
	db *gorm.DB
}

func NewOutboxRepo(db *gorm.DB) OutboxRepository {
	return &outboxRepo{db}
}

func (r *outboxRepo) Add(tx *gorm.DB, events []*model.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := tx.Create(&events).Error; err != nil {
		return fmt.Errorf("insert outbox: %w", err)
	}
	return nil
}

func (r *outboxRepo) GetPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	var events []model.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("processed_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("select pending outbox: %w", err)
	}
	return events, nil
}

func (r *outboxRepo) MarkProcessed(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Update("processed_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("mark outbox %d processed: %w", id, err)
	}
	return nil
}

// ListAfter reads rows of one type regardless of their processed state.
func (r *outboxRepo) ListAfter(ctx context.Context, afterID int64, eventType string, limit int) ([]model.OutboxEvent, error) {
	var events []model.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("id > ? AND event_type = ?", afterID, eventType).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("select outbox after %d: %w", afterID, err)
	}
	return events, nil
}

func (r *outboxRepo) LastID(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&id).Error
	if err != nil {
		return 0, fmt.Errorf("select last outbox id: %w", err)
	}
	return id, nil
}

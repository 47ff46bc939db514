// Package events relays the transactional outbox to Kafka and to the API
// websocket hub.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eie-registry/internal/repository"

	"github.com/rs/zerolog"
)

// Publisher polls the outbox table and forwards pending rows to the broker.
// Delivery is at-least-once: a row published but not marked is sent again.
type Publisher struct {
	outboxRepo repository.OutboxRepository
	producer   Producer
	interval   time.Duration
	batchSize  int
	logger     zerolog.Logger
}

type PublisherConfig struct {
	OutboxRepo repository.OutboxRepository
	Producer   Producer
	Interval   time.Duration
	BatchSize  int
	Logger     zerolog.Logger
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if cfg.OutboxRepo == nil {
		return nil, errors.New("outbox repository is required")
	}
	if cfg.Producer == nil {
		return nil, errors.New("producer is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got: %v", cfg.Interval)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got: %d", cfg.BatchSize)
	}

	return &Publisher{
		outboxRepo: cfg.OutboxRepo,
		producer:   cfg.Producer,
		interval:   cfg.Interval,
		batchSize:  cfg.BatchSize,
		logger:     cfg.Logger.With().Str("component", "outbox_publisher").Logger(),
	}, nil
}

// Start blocks until ctx is cancelled.
func (p *Publisher) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.PublishBatch(ctx); err != nil {
				p.logger.Error().Err(err).Msg("publish outbox batch")
			}
		}
	}
}

// PublishBatch sends one batch and returns how many rows were marked
// processed. Rows the broker refused stay pending for the next tick.
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	records, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, record := range records {
		if err := p.producer.Publish(ctx, record.AggregateID, record.EventType, []byte(record.Payload)); err != nil {
			p.logger.Warn().Err(err).Int64("outbox_id", record.ID).Msg("broker refused outbox event")
			continue
		}
		if err := p.outboxRepo.MarkProcessed(ctx, record.ID); err != nil {
			p.logger.Warn().Err(err).Int64("outbox_id", record.ID).Msg("mark outbox event processed")
			continue
		}
		marked++
	}
	return marked, nil
}

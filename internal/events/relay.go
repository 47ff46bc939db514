package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"eie-registry/internal/model"
	"eie-registry/internal/repository"
	"eie-registry/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// OutboxNotifier is the ws.Notifier of processes that hold no websocket
// clients. Upload events are written to the outbox, where the API's HubRelay
// picks them up and the Kafka publisher forwards them.
type OutboxNotifier struct {
	db     *gorm.DB
	repo   repository.OutboxRepository
	logger zerolog.Logger
}

func NewOutboxNotifier(db *gorm.DB, repo repository.OutboxRepository, logger zerolog.Logger) *OutboxNotifier {
	return &OutboxNotifier{
		db:     db,
		repo:   repo,
		logger: logger.With().Str("component", "outbox_notifier").Logger(),
	}
}

// Publish drops event types the API does not relay.
func (n *OutboxNotifier) Publish(eventType string, payload map[string]interface{}) {
	if eventType != ws.EventUploadStatusChanged {
		n.logger.Debug().Str("type", eventType).Msg("event not relayed")
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error().Err(err).Msg("marshal upload event")
		return
	}
	row := &model.OutboxEvent{
		EventID:     uuid.New(),
		EventType:   model.EventUploadStatusChanged,
		AggregateID: fmt.Sprint(payload["product_file_id"]),
		Payload:     string(data),
		OccurredAt:  time.Now(),
	}
	if err := n.repo.Add(n.db, []*model.OutboxEvent{row}); err != nil {
		n.logger.Error().Err(err).Str("aggregate_id", row.AggregateID).Msg("record upload event")
	}
}

// HubRelay tails upload events in the outbox and pushes them to the API hub.
// It keeps its own cursor and never marks rows, so the Kafka publisher still
// sees them.
type HubRelay struct {
	repo      repository.OutboxRepository
	hub       ws.Notifier
	interval  time.Duration
	batchSize int
	lastID    int64
	logger    zerolog.Logger
}

func NewHubRelay(repo repository.OutboxRepository, hub ws.Notifier, interval time.Duration, batchSize int, logger zerolog.Logger) *HubRelay {
	return &HubRelay{
		repo:      repo,
		hub:       hub,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger.With().Str("component", "hub_relay").Logger(),
	}
}

// Start skips events written before the API came up, then relays new ones
// until ctx is cancelled.
func (r *HubRelay) Start(ctx context.Context) error {
	if err := r.skipBacklog(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Forward(ctx); err != nil {
				r.logger.Error().Err(err).Msg("relay upload events")
			}
		}
	}
}

func (r *HubRelay) skipBacklog(ctx context.Context) error {
	last, err := r.repo.LastID(ctx)
	if err != nil {
		return err
	}
	r.lastID = last
	return nil
}

// Forward pushes one batch to the hub and returns how many events it relayed.
func (r *HubRelay) Forward(ctx context.Context) (int, error) {
	rows, err := r.repo.ListAfter(ctx, r.lastID, model.EventUploadStatusChanged, r.batchSize)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		r.lastID = row.ID
		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(row.Payload), &payload); err != nil {
			r.logger.Warn().Err(err).Int64("outbox_id", row.ID).Msg("skip unreadable upload event")
			continue
		}
		r.hub.Publish(ws.EventUploadStatusChanged, payload)
	}
	return len(rows), nil
}

package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is written in the same transaction as the change it describes
// and later relayed to the message broker.
type OutboxEvent struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"event_id"`
	EventType   string     `gorm:"type:varchar(50);not null" json:"event_type"`
	AggregateID string     `gorm:"type:varchar(64);not null;index" json:"aggregate_id"`
	Payload     string     `gorm:"type:text;not null" json:"payload"`
	OccurredAt  time.Time  `gorm:"not null" json:"occurred_at"`
	ProcessedAt *time.Time `gorm:"index" json:"processed_at,omitempty"`
}

func (OutboxEvent) TableName() string {
	return "outbox"
}

const (
	EventProductStatusChanged = "ProductStatusChanged"
	// EventUploadStatusChanged rows carry the product file summary pushed to
	// websocket clients.
	EventUploadStatusChanged = "UploadStatusChanged"
)

// ProductStatusChanged is the payload of EventProductStatusChanged.
type ProductStatusChanged struct {
	EventID        uuid.UUID     `json:"event_id"`
	ProductID      uuid.UUID     `json:"product_id"`
	GtinCode       string        `json:"gtin_code"`
	OrganizationID uuid.UUID     `json:"organization_id"`
	Action         string        `json:"action"`
	From           ProductStatus `json:"from"`
	To             ProductStatus `json:"to"`
	Motivation     string        `json:"motivation,omitempty"`
	ActorID        string        `json:"actor_id"`
	OccurredAt     time.Time     `json:"occurred_at"`
}

// ToOutbox serialises the event into an outbox row.
func (e ProductStatusChanged) ToOutbox() (*OutboxEvent, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		EventID:     e.EventID,
		EventType:   EventProductStatusChanged,
		AggregateID: e.GtinCode,
		Payload:     string(payload),
		OccurredAt:  e.OccurredAt,
	}, nil
}

// AllModels lists every table the registry migrates.
func AllModels() []interface{} {
	return []interface{}{
		&Privilege{}, &Role{}, &Institution{}, &User{}, &Consent{},
		&Upload{}, &Product{}, &ProductStatusHistory{}, &OutboxEvent{},
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Consent is a user's acceptance of one terms-of-service version.
type Consent struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_consent_user_version" json:"user_id"`
	Version    int       `gorm:"not null;uniqueIndex:idx_consent_user_version" json:"version"`
	AcceptedAt time.Time `json:"accepted_at"`
}

type ConsentStatus struct {
	Accepted   bool       `json:"accepted"`
	Version    int        `json:"version"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}

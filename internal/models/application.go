// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Application tracks an owner's onboarding. It is rebuilt from the listing it
// points at, so the stored row is only a cache.
type Application struct {
	OwnerID       uuid.UUID         `json:"owner_id" gorm:"type:uuid;primaryKey"`
	BusinessID    *uuid.UUID        `json:"business_id" gorm:"type:uuid;index"`
	BusinessName  string            `json:"business_name" gorm:"size:255"`
	Status        ApplicationStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	WizardPayload JSONB             `json:"wizard_payload,omitempty" gorm:"type:jsonb"`
	LastSyncedAt  *time.Time        `json:"last_synced_at"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

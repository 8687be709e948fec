// internal/models/event.go
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/localbiz/directory-backend/internal/lifecycle"
)

// LifecycleEvent is one accepted transition of a listing. Rows are written in
// the same transaction as the listing and never updated.
type LifecycleEvent struct {
	ID              uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	BusinessID      uuid.UUID                   `json:"business_id" gorm:"type:uuid;not null;index"`
	Event           lifecycle.EventType         `json:"event" gorm:"type:varchar(30);not null;index"`
	ActorID         *uuid.UUID                  `json:"actor_id" gorm:"type:uuid"`
	FromApplication lifecycle.ApplicationStatus `json:"from_application" gorm:"type:varchar(20)"`
	FromBusiness    lifecycle.BusinessStatus    `json:"from_business" gorm:"type:varchar(20)"`
	FromAdmin       lifecycle.AdminStatus       `json:"from_admin" gorm:"type:varchar(20)"`
	ToApplication   lifecycle.ApplicationStatus `json:"to_application" gorm:"type:varchar(20);not null"`
	ToBusiness      lifecycle.BusinessStatus    `json:"to_business" gorm:"type:varchar(20);not null"`
	ToAdmin         lifecycle.AdminStatus       `json:"to_admin" gorm:"type:varchar(20);not null"`
	Details         JSONB                       `json:"details" gorm:"type:jsonb"`
	CreatedAt       time.Time                   `json:"created_at" gorm:"index"`
}

// NewLifecycleEvent records a transition of the given listing.
func NewLifecycleEvent(businessID uuid.UUID, tr lifecycle.Transition, now time.Time) *LifecycleEvent {
	details := JSONB{}
	e := tr.Event
	if e.Notes != "" {
		details["notes"] = e.Notes
	}
	if e.Reason != "" {
		details["reason"] = e.Reason
	}
	if len(e.MissingFields) > 0 {
		details["missing_fields"] = e.MissingFields
	}
	if e.CanonicalID != nil {
		details["canonical_id"] = e.CanonicalID.String()
	}
	if tr.Assessment != nil {
		details["completion_percent"] = tr.Assessment.CompletionPercent
		details["is_publish_ready"] = tr.Assessment.IsPublishReady
	}

	return &LifecycleEvent{
		ID:              uuid.New(),
		BusinessID:      businessID,
		Event:           e.Type,
		ActorID:         actorRef(e.Actor),
		FromApplication: tr.From.Application,
		FromBusiness:    tr.From.Business,
		FromAdmin:       tr.From.Admin,
		ToApplication:   tr.To.Application,
		ToBusiness:      tr.To.Business,
		ToAdmin:         tr.To.Admin,
		Details:         details,
		CreatedAt:       now,
	}
}

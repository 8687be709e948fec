// internal/models/business.go
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/localbiz/directory-backend/internal/lifecycle"
)

// Business is a directory listing.
type Business struct {
	BaseModel
	OwnerID     uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name        string         `json:"name" gorm:"size:255"`
	Category    string         `json:"category" gorm:"size:100;index"`
	Phone       string         `json:"phone" gorm:"size:30"`
	WhatsApp    string         `json:"whatsapp" gorm:"column:whatsapp;size:30"`
	Email       string         `json:"email" gorm:"size:255"`
	Address     string         `json:"address" gorm:"type:text"`
	City        string         `json:"city" gorm:"size:100;index"`
	Latitude    *float64       `json:"latitude"`
	Longitude   *float64       `json:"longitude"`
	Description string         `json:"description" gorm:"type:text"`
	Schedule    Schedule       `json:"schedule" gorm:"type:jsonb"`
	LogoURL     string         `json:"logo_url" gorm:"size:500"`
	CoverURL    string         `json:"cover_url" gorm:"size:500"`
	Gallery     pq.StringArray `json:"gallery" gorm:"type:text[]"`
	SocialLinks StringMap      `json:"social_links" gorm:"type:jsonb"`
	Services    pq.StringArray `json:"services" gorm:"type:text[]"`
	Products    pq.StringArray `json:"products" gorm:"type:text[]"`

	BusinessStatus    lifecycle.BusinessStatus    `json:"business_status" gorm:"type:varchar(20);not null;index"`
	ApplicationStatus lifecycle.ApplicationStatus `json:"application_status" gorm:"type:varchar(20);not null;index"`
	AdminStatus       lifecycle.AdminStatus       `json:"admin_status" gorm:"type:varchar(20);not null;index"`

	CompletionPercent int            `json:"completion_percent" gorm:"default:0"`
	IsPublishReady    bool           `json:"is_publish_ready" gorm:"default:false"`
	MissingFields     pq.StringArray `json:"missing_fields" gorm:"type:text[]"`
	RequestedFields   pq.StringArray `json:"requested_fields" gorm:"type:text[]"`

	DuplicateOf     *uuid.UUID `json:"duplicate_of" gorm:"type:uuid"`
	AdminNotes      string     `json:"admin_notes,omitempty" gorm:"type:text"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:text"`

	SubmittedForReviewAt *time.Time `json:"submitted_for_review_at"`
	SubmittedForReviewBy *uuid.UUID `json:"submitted_for_review_by" gorm:"type:uuid"`
	PublishedAt          *time.Time `json:"published_at"`
	LastReviewedAt       *time.Time `json:"last_reviewed_at"`
	LastReviewedBy       *uuid.UUID `json:"last_reviewed_by" gorm:"type:uuid"`
	UnpublishedAt        *time.Time `json:"unpublished_at"`
	ArchivedAt           *time.Time `json:"archived_at"`
}

// Profile extracts the attributes the scorer looks at.
func (b *Business) Profile() lifecycle.Profile {
	return lifecycle.Profile{
		Name:        b.Name,
		Category:    b.Category,
		Phone:       b.Phone,
		WhatsApp:    b.WhatsApp,
		Address:     b.Address,
		Latitude:    b.Latitude,
		Longitude:   b.Longitude,
		Description: b.Description,
		Schedule:    lifecycle.WeeklySchedule(b.Schedule),
		LogoURL:     b.LogoURL,
		CoverURL:    b.CoverURL,
		Gallery:     b.Gallery,
		SocialLinks: b.SocialLinks,
		Services:    b.Services,
		Products:    b.Products,
	}
}

func (b *Business) State() lifecycle.State {
	return lifecycle.State{
		Application: b.ApplicationStatus,
		Business:    b.BusinessStatus,
		Admin:       b.AdminStatus,
	}
}

func (b *Business) Snapshot() lifecycle.Snapshot {
	return lifecycle.Snapshot{
		ID:             b.ID,
		State:          b.State(),
		Profile:        b.Profile(),
		IsPublishReady: b.IsPublishReady,
	}
}

// NeverReviewed reports whether no staff member has acted on the listing yet.
func (b *Business) NeverReviewed() bool {
	return b.LastReviewedAt == nil
}

// ApplyAssessment stores the derived completion fields.
func (b *Business) ApplyAssessment(a lifecycle.Assessment) {
	b.CompletionPercent = a.CompletionPercent
	b.IsPublishReady = a.IsPublishReady
	b.MissingFields = pq.StringArray(append([]string{}, a.MissingFields...))
}

// ApplyTransition writes an accepted transition onto the listing, stamping the
// timestamps and notes the event carries.
func (b *Business) ApplyTransition(tr lifecycle.Transition, now time.Time) {
	b.ApplicationStatus = tr.To.Application
	b.BusinessStatus = tr.To.Business
	b.AdminStatus = tr.To.Admin
	if tr.Assessment != nil {
		b.ApplyAssessment(*tr.Assessment)
	}

	e := tr.Event
	actor := actorRef(e.Actor)

	switch e.Type {
	case lifecycle.EventRequestPublish:
		b.SubmittedForReviewAt = &now
		b.SubmittedForReviewBy = actor

	case lifecycle.EventApprove:
		b.PublishedAt = &now
		b.markReviewed(actor, now)
		b.RequestedFields = nil
		b.RejectionReason = ""
		if notes := strings.TrimSpace(e.Notes); notes != "" {
			b.AdminNotes = notes
		}

	case lifecycle.EventReject:
		b.RejectionReason = strings.TrimSpace(e.Reason)
		b.markReviewed(actor, now)
		if notes := strings.TrimSpace(e.Notes); notes != "" {
			b.AdminNotes = notes
		}

	case lifecycle.EventRequestInfo:
		b.AdminNotes = strings.TrimSpace(e.Notes)
		b.RequestedFields = requestedLabels(e.MissingFields)
		b.markReviewed(actor, now)

	case lifecycle.EventUnpublish:
		b.UnpublishedAt = &now
		b.prependNote("Unpublished: " + strings.TrimSpace(e.Reason))
		b.markReviewed(actor, now)

	case lifecycle.EventArchive:
		b.ArchivedAt = &now
		if reason := strings.TrimSpace(e.Reason); reason != "" {
			b.prependNote("Archived: " + reason)
		}

	case lifecycle.EventMarkDuplicate:
		canonical := *e.CanonicalID
		b.DuplicateOf = &canonical
		if tr.From.Admin != lifecycle.AdminStatusArchived || b.ArchivedAt == nil {
			b.ArchivedAt = &now
		}

	case lifecycle.EventRestore:
		b.DuplicateOf = nil
		b.ArchivedAt = nil

	case lifecycle.EventDelete:
		b.prependNote("Deleted: " + strings.TrimSpace(e.Reason))
		b.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
	}
}

func (b *Business) markReviewed(actor *uuid.UUID, now time.Time) {
	b.LastReviewedAt = &now
	b.LastReviewedBy = actor
}

func (b *Business) prependNote(note string) {
	if strings.TrimSpace(b.AdminNotes) == "" {
		b.AdminNotes = note
		return
	}
	b.AdminNotes = note + "\n\n" + b.AdminNotes
}

func actorRef(a lifecycle.Actor) *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}

func requestedLabels(fields []string) pq.StringArray {
	labels := pq.StringArray{}
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		labels = append(labels, lifecycle.LabelFor(f))
	}
	return labels
}

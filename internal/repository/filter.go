// internal/repository/filter.go
package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/models"
)

// Queue names a staff work list.
type Queue string

const (
	QueueNew            Queue = "new"
	QueuePending        Queue = "pending"
	QueueReadyForReview Queue = "ready_for_review"
	QueuePublished      Queue = "published"
	QueueRejected       Queue = "rejected"
	QueueArchived       Queue = "archived"
	QueueAll            Queue = "all"
)

// Queues lists every queue in display order.
var Queues = []Queue{QueueNew, QueuePending, QueueReadyForReview, QueuePublished, QueueRejected, QueueArchived, QueueAll}

// ParseQueue accepts a queue name; the empty string means QueueAll.
func ParseQueue(s string) (Queue, bool) {
	if s == "" {
		return QueueAll, true
	}
	for _, q := range Queues {
		if string(q) == s {
			return q, true
		}
	}
	return "", false
}

// BusinessFilter selects listings. Deleted listings never match.
type BusinessFilter struct {
	Queue      Queue
	OwnerID    *uuid.UUID
	PublicOnly bool
	Category   string
	City       string
	Search     string
}

// Matches applies the filter to a single listing.
func (f BusinessFilter) Matches(b *models.Business) bool {
	if b.DeletedAt.Valid || b.State().IsDeleted() {
		return false
	}
	if f.OwnerID != nil && b.OwnerID != *f.OwnerID {
		return false
	}
	if f.PublicOnly && !b.State().IsPublished() {
		return false
	}
	if f.Category != "" && !strings.EqualFold(b.Category, f.Category) {
		return false
	}
	if f.City != "" && !strings.EqualFold(b.City, f.City) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(b.Name), needle) && !strings.Contains(strings.ToLower(b.Description), needle) {
			return false
		}
	}

	active := b.AdminStatus == lifecycle.AdminStatusActive
	switch f.Queue {
	case QueueNew:
		return active && b.ApplicationStatus == lifecycle.ApplicationStatusSubmitted && b.NeverReviewed()
	case QueuePending:
		return active && (b.ApplicationStatus == lifecycle.ApplicationStatusSubmitted ||
			b.ApplicationStatus == lifecycle.ApplicationStatusNeedsInfo)
	case QueueReadyForReview:
		return active && b.ApplicationStatus == lifecycle.ApplicationStatusReadyForReview
	case QueuePublished:
		return active && b.BusinessStatus == lifecycle.BusinessStatusPublished
	case QueueRejected:
		return active && b.ApplicationStatus == lifecycle.ApplicationStatusRejected
	case QueueArchived:
		return b.AdminStatus == lifecycle.AdminStatusArchived
	}
	return true
}

// Scope is the SQL form of Matches.
func (f BusinessFilter) Scope(db *gorm.DB) *gorm.DB {
	db = db.Where("business_status <> ? AND application_status <> ? AND admin_status <> ?",
		lifecycle.BusinessStatusDeleted, lifecycle.ApplicationStatusDeleted, lifecycle.AdminStatusDeleted)

	if f.OwnerID != nil {
		db = db.Where("owner_id = ?", *f.OwnerID)
	}
	if f.PublicOnly {
		db = db.Where("business_status = ? AND admin_status = ?", lifecycle.BusinessStatusPublished, lifecycle.AdminStatusActive)
	}
	if f.Category != "" {
		db = db.Where("LOWER(category) = LOWER(?)", f.Category)
	}
	if f.City != "" {
		db = db.Where("LOWER(city) = LOWER(?)", f.City)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		db = db.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	active := lifecycle.AdminStatusActive
	switch f.Queue {
	case QueueNew:
		db = db.Where("admin_status = ? AND application_status = ? AND last_reviewed_at IS NULL",
			active, lifecycle.ApplicationStatusSubmitted)
	case QueuePending:
		db = db.Where("admin_status = ? AND application_status IN ?",
			active, []lifecycle.ApplicationStatus{lifecycle.ApplicationStatusSubmitted, lifecycle.ApplicationStatusNeedsInfo})
	case QueueReadyForReview:
		db = db.Where("admin_status = ? AND application_status = ?", active, lifecycle.ApplicationStatusReadyForReview)
	case QueuePublished:
		db = db.Where("admin_status = ? AND business_status = ?", active, lifecycle.BusinessStatusPublished)
	case QueueRejected:
		db = db.Where("admin_status = ? AND application_status = ?", active, lifecycle.ApplicationStatusRejected)
	case QueueArchived:
		db = db.Where("admin_status = ?", lifecycle.AdminStatusArchived)
	}
	return db
}

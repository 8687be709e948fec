// internal/projection/projection.go
package projection

import (
	"errors"
	"time"

	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/models"
)

// ErrForeignApplication is returned when the owner's application already
// tracks a different listing.
var ErrForeignApplication = errors.New("application tracks another listing")

// SimplifiedStatus maps the detailed workflow status to the one owners see.
func SimplifiedStatus(s lifecycle.ApplicationStatus) models.ApplicationStatus {
	switch s {
	case lifecycle.ApplicationStatusNeedsInfo:
		return models.ApplicationStatusNeedsInfo
	case lifecycle.ApplicationStatusApproved:
		return models.ApplicationStatusApproved
	case lifecycle.ApplicationStatusRejected:
		return models.ApplicationStatusRejected
	case lifecycle.ApplicationStatusDeleted:
		return models.ApplicationStatusDeleted
	default:
		return models.ApplicationStatusPending
	}
}

// Build derives the owner's application from the listing. The stored row, when
// given, contributes only the fields the listing does not carry (the wizard
// payload and creation time).
func Build(b *models.Business, stored *models.Application, now time.Time) (models.Application, error) {
	app := models.Application{OwnerID: b.OwnerID, CreatedAt: now}
	if stored != nil {
		if stored.BusinessID != nil && *stored.BusinessID != b.ID {
			return models.Application{}, ErrForeignApplication
		}
		app = *stored
	}

	id := b.ID
	app.BusinessID = &id
	app.BusinessName = b.Name
	app.Status = SimplifiedStatus(b.ApplicationStatus)
	if b.DeletedAt.Valid {
		app.Status = models.ApplicationStatusDeleted
	}
	app.LastSyncedAt = &now
	return app, nil
}

// Repoint builds the application for a listing created by the backfill path,
// which is the only caller allowed to move an application to a new listing.
func Repoint(b *models.Business, stored models.Application, now time.Time) models.Application {
	stored.BusinessID = nil
	app, _ := Build(b, &stored, now)
	return app
}

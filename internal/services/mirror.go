// internal/services/mirror.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/localbiz/directory-backend/internal/metrics"
	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/projection"
	"github.com/localbiz/directory-backend/internal/repository"
)

// ApplicationMirror keeps the owner's application in step with the listing.
// Writes are best effort: the listing is the source of truth and
// ReconcileService repairs any drift.
type ApplicationMirror struct {
	store repository.Store
}

func NewApplicationMirror(store repository.Store) *ApplicationMirror {
	return &ApplicationMirror{store: store}
}

// Sync rebuilds and stores the application for b. A non-nil payload replaces
// the stored wizard payload.
func (m *ApplicationMirror) Sync(ctx context.Context, b *models.Business, payload models.JSONB) {
	if err := m.sync(ctx, b, payload); err != nil {
		log := logrus.WithError(err).WithFields(logrus.Fields{
			"business_id": b.ID,
			"owner_id":    b.OwnerID,
		})
		if errors.Is(err, projection.ErrForeignApplication) {
			log.Info("Application tracks another listing, mirror skipped")
			return
		}
		metrics.MirrorFailures.Inc()
		log.Warn("Failed to mirror application")
	}
}

func (m *ApplicationMirror) sync(ctx context.Context, b *models.Business, payload models.JSONB) error {
	stored, err := m.store.GetApplication(ctx, b.OwnerID)
	if errors.Is(err, repository.ErrNotFound) {
		stored, err = nil, nil
	}
	if err != nil {
		return err
	}

	app, err := projection.Build(b, stored, time.Now().UTC())
	if err != nil {
		return err
	}
	if payload != nil {
		app.WizardPayload = payload
	}
	return m.store.SaveApplication(ctx, &app)
}

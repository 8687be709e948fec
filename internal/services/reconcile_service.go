// internal/services/reconcile_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/projection"
	"github.com/localbiz/directory-backend/internal/repository"
)

// ReconcileReport summarises a maintenance run.
type ReconcileReport struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ReconcileService repairs application projections that drifted from their
// listings after a failed best-effort mirror write.
type ReconcileService struct {
	store  repository.Store
	intake *IntakeService
}

func NewReconcileService(store repository.Store, intake *IntakeService) *ReconcileService {
	return &ReconcileService{store: store, intake: intake}
}

// ReconcileApplications rebuilds every stored application from its listing.
func (s *ReconcileService) ReconcileApplications(ctx context.Context) (*ReconcileReport, error) {
	apps, err := s.store.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	report := &ReconcileReport{}
	for i := range apps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++
		stored := apps[i]

		if stored.BusinessID == nil {
			report.Skipped++
			continue
		}

		b, err := s.store.GetBusinessUnscoped(ctx, *stored.BusinessID)
		if errors.Is(err, repository.ErrNotFound) {
			report.Skipped++
			continue
		}
		if err != nil {
			report.Failed++
			logrus.WithError(err).WithField("owner_id", stored.OwnerID).Error("Failed to load business for application")
			continue
		}

		app, err := projection.Build(b, &stored, time.Now().UTC())
		if err != nil {
			report.Failed++
			continue
		}
		if app.Status == stored.Status && app.BusinessName == stored.BusinessName {
			continue
		}

		if err := s.store.SaveApplication(ctx, &app); err != nil {
			report.Failed++
			logrus.WithError(err).WithField("owner_id", stored.OwnerID).Error("Failed to save reconciled application")
			continue
		}
		report.Updated++
	}

	logrus.WithFields(logrus.Fields{
		"scanned": report.Scanned,
		"updated": report.Updated,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("Application reconciliation completed")
	return report, nil
}

// BackfillMissingBusinesses creates listings for applications whose listing
// was never created or no longer exists, from the stored wizard payload.
func (s *ReconcileService) BackfillMissingBusinesses(ctx context.Context) (*ReconcileReport, error) {
	apps, err := s.store.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	report := &ReconcileReport{}
	for i := range apps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++
		stored := apps[i]

		missing, err := s.listingMissing(ctx, stored)
		if err != nil {
			report.Failed++
			logrus.WithError(err).WithField("owner_id", stored.OwnerID).Error("Failed to check application listing")
			continue
		}
		if !missing {
			continue
		}
		if stored.Status == models.ApplicationStatusDeleted || len(stored.WizardPayload) == 0 {
			report.Skipped++
			continue
		}

		b, err := s.intake.createFromDocument(ctx, stored.OwnerID, stored.WizardPayload)
		if err != nil {
			report.Failed++
			logrus.WithError(err).WithField("owner_id", stored.OwnerID).Warn("Failed to backfill business")
			continue
		}

		app := projection.Repoint(b, stored, time.Now().UTC())
		if err := s.store.SaveApplication(ctx, &app); err != nil {
			report.Failed++
			logrus.WithError(err).WithField("business_id", b.ID).Error("Failed to repoint application")
			continue
		}
		report.Created++
	}

	logrus.WithFields(logrus.Fields{
		"scanned": report.Scanned,
		"created": report.Created,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("Business backfill completed")
	return report, nil
}

func (s *ReconcileService) listingMissing(ctx context.Context, app models.Application) (bool, error) {
	if app.BusinessID == nil {
		return true, nil
	}
	_, err := s.store.GetBusinessUnscoped(ctx, *app.BusinessID)
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	return false, err
}

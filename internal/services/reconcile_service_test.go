// internal/services/reconcile_service_test.go
package services

import (
	"github.com/google/uuid"

	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/models"
)

func (s *ServiceTestSuite) TestReconcileApplicationsSkipsOrphans() {
	orphan := &models.Application{OwnerID: uuid.New(), Status: models.ApplicationStatusPending}
	s.Require().NoError(s.store.SaveApplication(s.ctx, orphan))

	report, err := s.reconcile.ReconcileApplications(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Scanned)
	s.Equal(1, report.Skipped)
	s.Equal(0, report.Updated)
}

func (s *ServiceTestSuite) TestBackfillMissingBusinesses() {
	owner := uuid.New()
	ghost := uuid.New()
	s.Require().NoError(s.store.SaveApplication(s.ctx, &models.Application{
		OwnerID:    owner,
		BusinessID: &ghost,
		Status:     models.ApplicationStatusPending,
		WizardPayload: models.JSONB{
			"name":     "Lavandería Burbujas",
			"category": "lavanderia",
			"phone":    "222-555-0101",
		},
	}))
	s.Require().NoError(s.store.SaveApplication(s.ctx, &models.Application{
		OwnerID: uuid.New(),
		Status:  models.ApplicationStatusDeleted,
	}))
	s.submit(minimalWizard("Already linked"))

	report, err := s.reconcile.BackfillMissingBusinesses(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, report.Scanned)
	s.Equal(1, report.Created)
	s.Equal(1, report.Skipped)
	s.Equal(0, report.Failed)

	app, err := s.store.GetApplication(s.ctx, owner)
	s.Require().NoError(err)
	s.Require().NotNil(app.BusinessID)
	s.NotEqual(ghost, *app.BusinessID)
	s.Equal("Lavandería Burbujas", app.BusinessName)

	b, err := s.store.GetBusiness(s.ctx, *app.BusinessID)
	s.Require().NoError(err)
	s.Equal(owner, b.OwnerID)
	s.Equal("Laundry", b.Category)
	s.Equal("2225550101", b.Phone)
	s.Equal(lifecycle.ApplicationStatusSubmitted, b.ApplicationStatus)
	s.Equal([]lifecycle.EventType{lifecycle.EventSubmit}, s.events(b.ID))

	// A second run finds nothing to do.
	report, err = s.reconcile.BackfillMissingBusinesses(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, report.Created)
}

func (s *ServiceTestSuite) TestBackfillReportsInvalidPayloads() {
	s.Require().NoError(s.store.SaveApplication(s.ctx, &models.Application{
		OwnerID:       uuid.New(),
		Status:        models.ApplicationStatusPending,
		WizardPayload: models.JSONB{"category": "cafe"},
	}))

	report, err := s.reconcile.BackfillMissingBusinesses(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Failed)
	s.Equal(0, report.Created)
}

// internal/services/intake_service_test.go
package services

import (
	"errors"

	"github.com/google/uuid"

	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/validation"
)

func (s *ServiceTestSuite) TestSubmitCreatesNormalisedListing() {
	result, err := s.intake.Submit(s.ctx, SubmitRequest{Token: "Bearer " + s.token, Payload: mustJSON(s.T(), readyWizard("  Panadería   La Espiga "))})
	s.Require().NoError(err)
	s.True(result.Created)

	b := result.Business
	s.Equal(s.owner, b.OwnerID)
	s.Equal("Panadería La Espiga", b.Name)
	s.Equal("Bakery", b.Category)
	s.Equal("+525512345678", b.Phone)
	s.Empty(b.Gallery)
	s.Require().NotNil(b.Latitude)
	s.Equal(17.06, *b.Latitude)

	// Promotion to ready_for_review waits for the first recompute.
	s.Equal(lifecycle.State{
		Application: lifecycle.ApplicationStatusSubmitted,
		Business:    lifecycle.BusinessStatusDraft,
		Admin:       lifecycle.AdminStatusActive,
	}, b.State())
	s.Equal(60, b.CompletionPercent)
	s.True(b.IsPublishReady)
	s.Contains(b.MissingFields, "Logo")

	s.Equal([]lifecycle.EventType{lifecycle.EventSubmit}, s.events(b.ID))

	app, err := s.store.GetApplication(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Require().NotNil(app.BusinessID)
	s.Equal(b.ID, *app.BusinessID)
	s.Equal(models.ApplicationStatusPending, app.Status)
	s.Equal("  Panadería   La Espiga ", app.WizardPayload["name"])
}

func (s *ServiceTestSuite) TestSubmitReturnsExistingListing() {
	first, err := s.intake.Submit(s.ctx, SubmitRequest{Token: s.token, Payload: mustJSON(s.T(), minimalWizard("Ferretería Lupita"))})
	s.Require().NoError(err)
	s.True(first.Created)

	again, err := s.intake.Submit(s.ctx, SubmitRequest{Token: s.token, Payload: mustJSON(s.T(), minimalWizard("Otra"))})
	s.Require().NoError(err)
	s.False(again.Created)
	s.Equal(first.Business.ID, again.Business.ID)
	s.Equal("Ferretería Lupita", again.Business.Name)

	forced, err := s.intake.Submit(s.ctx, SubmitRequest{Token: s.token, Payload: mustJSON(s.T(), minimalWizard("Sucursal Norte")), Mode: SubmitModeNew})
	s.Require().NoError(err)
	s.True(forced.Created)
	s.NotEqual(first.Business.ID, forced.Business.ID)

	// The application keeps tracking the first listing.
	app, err := s.store.GetApplication(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal(first.Business.ID, *app.BusinessID)

	owned, err := s.businesses.ListOwned(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Len(owned, 2)
}

func (s *ServiceTestSuite) TestSubmitRejectsBadInput() {
	payload := mustJSON(s.T(), minimalWizard("Ferretería Lupita"))

	_, err := s.intake.Submit(s.ctx, SubmitRequest{Payload: payload})
	s.ErrorIs(err, ErrValidation)

	_, err = s.intake.Submit(s.ctx, SubmitRequest{Token: "garbage", Payload: payload})
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.intake.Submit(s.ctx, SubmitRequest{Token: s.token, Payload: payload, Mode: "replace"})
	s.ErrorIs(err, ErrValidation)

	_, err = s.intake.Submit(s.ctx, SubmitRequest{Token: s.token, Payload: []byte(`{"category": "cafe"}`)})
	s.ErrorIs(err, ErrValidation)
	var schemaErr *validation.SchemaError
	s.True(errors.As(err, &schemaErr))

	owned, err := s.businesses.ListOwned(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Empty(owned)

	_, err = s.store.GetApplication(s.ctx, s.owner)
	s.Error(err)
}

func (s *ServiceTestSuite) TestSubmitSurvivesMirrorFailure() {
	s.wire(failingMirrorStore{s.store}, s.notifier)

	result, err := s.intake.Submit(s.ctx, SubmitRequest{Token: s.token, Payload: mustJSON(s.T(), minimalWizard("Ferretería Lupita"))})
	s.Require().NoError(err)

	stored, err := s.store.GetBusiness(s.ctx, result.Business.ID)
	s.Require().NoError(err)
	s.Equal(lifecycle.ApplicationStatusSubmitted, stored.ApplicationStatus)

	_, err = s.store.GetApplication(s.ctx, s.owner)
	s.Error(err)
}

func (s *ServiceTestSuite) TestSubmitScopesDedupeToOwner() {
	s.submit(minimalWizard("Ferretería Lupita"))

	other := uuid.New()
	result, err := s.intake.Submit(s.ctx, SubmitRequest{Token: s.tokenFor(other), Payload: mustJSON(s.T(), minimalWizard("Tlapalería Don Beto"))})
	s.Require().NoError(err)
	s.True(result.Created)
	s.Equal(other, result.Business.OwnerID)
}

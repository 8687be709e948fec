// internal/services/business_service_test.go
package services

import (
	"errors"

	"github.com/google/uuid"

	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/utils"
)

func strPtr(s string) *string { return &s }

func (s *ServiceTestSuite) TestRecomputePromotesReadyListing() {
	b := s.submit(readyWizard("Panadería La Espiga"))

	b, err := s.businesses.Recompute(s.ctx, s.owner, b.ID)
	s.Require().NoError(err)
	s.Equal(lifecycle.ApplicationStatusReadyForReview, b.ApplicationStatus)
	s.Equal(lifecycle.BusinessStatusDraft, b.BusinessStatus)

	// A second recompute changes nothing and writes no history.
	again, err := s.businesses.Recompute(s.ctx, s.owner, b.ID)
	s.Require().NoError(err)
	s.Equal(b.State(), again.State())
	s.Equal(b.CompletionPercent, again.CompletionPercent)
	s.Equal([]lifecycle.EventType{lifecycle.EventSubmit, lifecycle.EventRecompute}, s.events(b.ID))
}

func (s *ServiceTestSuite) TestUpdateProfileRescoresAndMirrors() {
	b := s.submit(minimalWizard("Ferretería Lupita"))
	s.Equal(30, b.CompletionPercent)
	s.False(b.IsPublishReady)

	b, err := s.businesses.UpdateProfile(s.ctx, s.owner, b.ID, UpdateBusinessRequest{
		Name:        strPtr("Ferretería Lupita e Hijos"),
		Address:     strPtr("Calle 5 de Mayo 40"),
		Location:    &LocationInput{Lat: 19.04, Lng: -98.2},
		Description: strPtr("Herramientas, pinturas y material eléctrico para tu casa desde 1985."),
		Schedule: map[string]DayHoursInput{
			"saturday": {Open: true, From: "09:00", To: "14:00"},
		},
		LogoURL: strPtr("https://cdn.example.com/lupita.png"),
	})
	s.Require().NoError(err)
	s.Equal(70, b.CompletionPercent)
	s.True(b.IsPublishReady)
	s.Equal(lifecycle.ApplicationStatusReadyForReview, b.ApplicationStatus)
	s.NotContains(b.MissingFields, "Logo")

	app, err := s.businesses.GetApplication(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal("Ferretería Lupita e Hijos", app.BusinessName)
	s.Equal(models.ApplicationStatusPending, app.Status)
}

func (s *ServiceTestSuite) TestUpdateProfileValidatesInput() {
	b := s.submit(minimalWizard("Ferretería Lupita"))

	_, err := s.businesses.UpdateProfile(s.ctx, s.owner, b.ID, UpdateBusinessRequest{
		Schedule: map[string]DayHoursInput{"funday": {Open: true}},
	})
	s.ErrorIs(err, ErrValidation)

	_, err = s.businesses.UpdateProfile(s.ctx, s.owner, b.ID, UpdateBusinessRequest{Phone: strPtr("call me")})
	s.ErrorIs(err, ErrValidation)
}

func (s *ServiceTestSuite) TestReadinessIsSticky() {
	b := s.submitReady()

	b, err := s.businesses.UpdateProfile(s.ctx, s.owner, b.ID, UpdateBusinessRequest{Description: strPtr("Muy corta")})
	s.Require().NoError(err)
	s.False(b.IsPublishReady)
	s.Equal(lifecycle.ApplicationStatusReadyForReview, b.ApplicationStatus)
	s.Contains(b.MissingFields, lifecycle.LabelFor("description"))
}

func (s *ServiceTestSuite) TestOwnerCannotTouchOtherListings() {
	b := s.submit(minimalWizard("Ferretería Lupita"))
	stranger := uuid.New()

	_, err := s.businesses.GetOwned(s.ctx, stranger, b.ID)
	s.ErrorIs(err, ErrForbidden)

	_, err = s.businesses.UpdateProfile(s.ctx, stranger, b.ID, UpdateBusinessRequest{Name: strPtr("Mine now")})
	s.ErrorIs(err, ErrForbidden)

	_, err = s.businesses.RequestPublish(s.ctx, stranger, b.ID)
	s.ErrorIs(err, ErrForbidden)

	_, err = s.businesses.GetOwned(s.ctx, s.owner, uuid.New())
	s.ErrorIs(err, ErrNotFound)
}

func (s *ServiceTestSuite) TestRequestPublish() {
	b := s.submitReady()

	b, err := s.businesses.RequestPublish(s.ctx, s.owner, b.ID)
	s.Require().NoError(err)
	s.Equal(lifecycle.ApplicationStatusReadyForReview, b.ApplicationStatus)
	s.Require().NotNil(b.SubmittedForReviewAt)
	s.Equal(s.owner, *b.SubmittedForReviewBy)

	sent := s.sent()
	s.Require().Len(sent, 1)
	s.Equal(lifecycle.EventRequestPublish, sent[0].Event)
	s.Equal("https://directory.test/admin/businesses/"+b.ID.String(), sent[0].Link)
	s.Contains(sent[0].Message, "60% complete")
}

func (s *ServiceTestSuite) TestRequestPublishWhenNotReady() {
	b := s.submit(minimalWizard("Ferretería Lupita"))

	_, err := s.businesses.RequestPublish(s.ctx, s.owner, b.ID)
	s.ErrorIs(err, ErrNotPublishReady)

	var notReady *lifecycle.NotReadyError
	s.Require().True(errors.As(err, &notReady))
	s.False(notReady.Stale)
	s.Contains(notReady.MissingFields, "Address and map location")
	s.Contains(notReady.UnmetRequirements, "Opening hours with valid times")

	stored, err := s.store.GetBusiness(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Nil(stored.SubmittedForReviewAt)
	s.Empty(s.sent())
}

func (s *ServiceTestSuite) TestPublishedListingIsReadOnly() {
	b := s.submitReady()
	_, err := s.moderation.Approve(s.ctx, s.staff, b.ID, ApproveRequest{})
	s.Require().NoError(err)

	_, err = s.businesses.UpdateProfile(s.ctx, s.owner, b.ID, UpdateBusinessRequest{Name: strPtr("Renamed")})
	s.ErrorIs(err, ErrPublishedReadOnly)
	s.ErrorIs(err, ErrForbidden)
	s.NotErrorIs(err, ErrInvalidTransition)

	_, err = s.businesses.RequestPublish(s.ctx, s.owner, b.ID)
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *ServiceTestSuite) TestPublicReads() {
	hidden := s.submit(minimalWizard("Ferretería Lupita"))
	live := s.submitReady()
	_, err := s.moderation.Approve(s.ctx, s.staff, live.ID, ApproveRequest{})
	s.Require().NoError(err)

	_, err = s.businesses.GetPublic(s.ctx, hidden.ID)
	s.ErrorIs(err, ErrNotFound)

	got, err := s.businesses.GetPublic(s.ctx, live.ID)
	s.Require().NoError(err)
	s.Equal(live.ID, got.ID)

	list, total, err := s.businesses.ListPublic(s.ctx, utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}, "")
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(live.ID, list[0].ID)

	_, total, err = s.businesses.ListPublic(s.ctx, utils.PaginationParams{Page: 1, Limit: 20}, "Puebla")
	s.Require().NoError(err)
	s.Equal(int64(0), total)
}

func (s *ServiceTestSuite) TestGetApplicationIsRebuiltFromListing() {
	b := s.submitReady()
	_, err := s.moderation.Approve(s.ctx, s.staff, b.ID, ApproveRequest{})
	s.Require().NoError(err)

	// Simulate a lost mirror write.
	stale, err := s.store.GetApplication(s.ctx, s.owner)
	s.Require().NoError(err)
	stale.Status = models.ApplicationStatusPending
	s.Require().NoError(s.store.SaveApplication(s.ctx, stale))

	app, err := s.businesses.GetApplication(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal(models.ApplicationStatusApproved, app.Status)
	s.NotNil(app.WizardPayload)

	_, err = s.businesses.GetApplication(s.ctx, uuid.New())
	s.ErrorIs(err, ErrNotFound)
}

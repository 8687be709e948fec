// internal/services/moderation_service_test.go
package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/repository"
	"github.com/localbiz/directory-backend/internal/utils"
)

func (s *ServiceTestSuite) TestApprovePublishes() {
	b := s.submitReady()

	b, err := s.moderation.Approve(s.ctx, s.staff, b.ID, ApproveRequest{Notes: "Looks great"})
	s.Require().NoError(err)
	s.True(b.State().IsPublished())
	s.Equal(lifecycle.ApplicationStatusApproved, b.ApplicationStatus)
	s.NotNil(b.PublishedAt)
	s.Equal(s.staff.ID, *b.LastReviewedBy)
	s.Equal("Looks great", b.AdminNotes)

	s.Equal([]lifecycle.EventType{lifecycle.EventSubmit, lifecycle.EventRecompute, lifecycle.EventApprove}, s.events(b.ID))

	app, err := s.store.GetApplication(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal(models.ApplicationStatusApproved, app.Status)

	sent := s.sent()
	s.Require().Len(sent, 1)
	s.Equal(lifecycle.EventApprove, sent[0].Event)
	s.Equal("https://directory.test/my/businesses/"+b.ID.String(), sent[0].Link)
	s.Equal(`"Panadería La Espiga" is now published in the directory.`, sent[0].Message)
}

func (s *ServiceTestSuite) TestApproveTwiceIsInvalid() {
	b := s.submitReady()
	_, err := s.moderation.Approve(s.ctx, s.staff, b.ID, ApproveRequest{})
	s.Require().NoError(err)

	_, err = s.moderation.Approve(s.ctx, s.staff, b.ID, ApproveRequest{})
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *ServiceTestSuite) TestStaffActionsRequireStaff() {
	b := s.submitReady()
	owner := lifecycle.Actor{ID: s.owner}

	_, err := s.moderation.Approve(s.ctx, owner, b.ID, ApproveRequest{})
	s.ErrorIs(err, ErrForbidden)

	stored, err := s.store.GetBusiness(s.ctx, b.ID)
	s.Require().NoError(err)
	s.False(stored.State().IsPublished())
}

func (s *ServiceTestSuite) TestRejectNeedsReason() {
	b := s.submitReady()

	_, err := s.moderation.Reject(s.ctx, s.staff, b.ID, RejectRequest{Reason: "too short"})
	s.ErrorIs(err, ErrValidation)
	s.Len(s.events(b.ID), 2)

	b, err = s.moderation.Reject(s.ctx, s.staff, b.ID, RejectRequest{Reason: "Photos belong to another business"})
	s.Require().NoError(err)
	s.Equal(lifecycle.ApplicationStatusRejected, b.ApplicationStatus)
	s.Equal("Photos belong to another business", b.RejectionReason)

	sent := s.sent()
	s.Require().Len(sent, 1)
	s.Contains(sent[0].Message, "Photos belong to another business")
}

func (s *ServiceTestSuite) TestRequestInfo() {
	b := s.submitReady()

	b, err := s.moderation.RequestInfo(s.ctx, s.staff, b.ID, RequestInfoRequest{
		Notes:         "Please add your logo and a cover photo",
		MissingFields: []string{"logo", "cover", " "},
	})
	s.Require().NoError(err)
	s.Equal(lifecycle.ApplicationStatusNeedsInfo, b.ApplicationStatus)
	s.Equal([]string{"Logo", "Cover image"}, []string(b.RequestedFields))

	app, err := s.store.GetApplication(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal(models.ApplicationStatusNeedsInfo, app.Status)

	sent := s.sent()
	s.Require().Len(sent, 1)
	s.Contains(sent[0].Message, "missing: Logo, Cover image")
}

func (s *ServiceTestSuite) TestUnpublish() {
	b := s.submitReady()
	_, err := s.moderation.Approve(s.ctx, s.staff, b.ID, ApproveRequest{Notes: "Approved on first pass"})
	s.Require().NoError(err)

	b, err = s.moderation.Unpublish(s.ctx, s.staff, b.ID, UnpublishRequest{Reason: "Owner reported closure"})
	s.Require().NoError(err)
	s.Equal(lifecycle.BusinessStatusDraft, b.BusinessStatus)
	s.Equal(lifecycle.ApplicationStatusNeedsInfo, b.ApplicationStatus)
	s.True(strings.HasPrefix(b.AdminNotes, "Unpublished: Owner reported closure\n\n"))
	s.NotNil(b.UnpublishedAt)

	_, err = s.moderation.Unpublish(s.ctx, s.staff, b.ID, UnpublishRequest{Reason: "Owner reported closure"})
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *ServiceTestSuite) TestArchiveAndRestore() {
	b := s.submitReady()

	b, err := s.moderation.Archive(s.ctx, s.staff, b.ID, ArchiveRequest{Reason: "Seasonal"})
	s.Require().NoError(err)
	s.Equal(lifecycle.AdminStatusArchived, b.AdminStatus)
	s.Equal(lifecycle.ApplicationStatusReadyForReview, b.ApplicationStatus)

	_, err = s.moderation.Archive(s.ctx, s.staff, b.ID, ArchiveRequest{})
	s.ErrorIs(err, ErrInvalidTransition)

	_, err = s.moderation.Approve(s.ctx, s.staff, b.ID, ApproveRequest{})
	s.ErrorIs(err, ErrInvalidTransition)

	b, err = s.moderation.Restore(s.ctx, s.staff, b.ID)
	s.Require().NoError(err)
	s.Equal(lifecycle.AdminStatusActive, b.AdminStatus)
	s.Nil(b.ArchivedAt)
}

func (s *ServiceTestSuite) TestMarkDuplicate() {
	canonical := s.submitReady()
	dup := s.submit(minimalWizard("Panadería La Espiga 2"))

	_, err := s.moderation.MarkDuplicate(s.ctx, s.staff, dup.ID, MarkDuplicateRequest{CanonicalID: uuid.New().String()})
	s.ErrorIs(err, ErrNotFound)

	_, err = s.moderation.MarkDuplicate(s.ctx, s.staff, dup.ID, MarkDuplicateRequest{CanonicalID: dup.ID.String()})
	s.ErrorIs(err, ErrValidation)

	_, err = s.moderation.MarkDuplicate(s.ctx, s.staff, dup.ID, MarkDuplicateRequest{CanonicalID: "nope"})
	s.ErrorIs(err, ErrValidation)

	dup, err = s.moderation.MarkDuplicate(s.ctx, s.staff, dup.ID, MarkDuplicateRequest{CanonicalID: canonical.ID.String()})
	s.Require().NoError(err)
	s.Equal(lifecycle.AdminStatusArchived, dup.AdminStatus)
	s.Equal(canonical.ID, *dup.DuplicateOf)
}

func (s *ServiceTestSuite) TestMarkDuplicateOfDeletedListing() {
	canonical := s.submitReady()
	dup := s.submit(minimalWizard("Panadería La Espiga 2"))
	_, err := s.moderation.Delete(s.ctx, s.staff, canonical.ID, DeleteRequest{Reason: "Spam"})
	s.Require().NoError(err)

	_, err = s.moderation.MarkDuplicate(s.ctx, s.staff, dup.ID, MarkDuplicateRequest{CanonicalID: canonical.ID.String()})
	s.ErrorIs(err, ErrNotFound)
}

func (s *ServiceTestSuite) TestDeleteIsTerminal() {
	b := s.submitReady()

	_, err := s.moderation.Delete(s.ctx, s.staff, b.ID, DeleteRequest{Reason: " "})
	s.ErrorIs(err, ErrValidation)

	deleted, err := s.moderation.Delete(s.ctx, s.staff, b.ID, DeleteRequest{Reason: "Duplicate spam account"})
	s.Require().NoError(err)
	s.True(deleted.State().IsDeleted())
	s.True(deleted.DeletedAt.Valid)

	_, err = s.moderation.GetBusiness(s.ctx, b.ID)
	s.ErrorIs(err, ErrNotFound)
	_, err = s.moderation.Restore(s.ctx, s.staff, b.ID)
	s.ErrorIs(err, ErrNotFound)

	history, err := s.moderation.History(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(lifecycle.EventDelete, history[len(history)-1].Event)

	app, err := s.store.GetApplication(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal(models.ApplicationStatusDeleted, app.Status)

	_, err = s.moderation.History(s.ctx, uuid.New())
	s.ErrorIs(err, ErrNotFound)
}

func (s *ServiceTestSuite) TestQueuesAndStats() {
	fresh := s.submit(minimalWizard("Fresh"))
	ready := s.submitReady()
	live := s.submitReady()
	_, err := s.moderation.Approve(s.ctx, s.staff, live.ID, ApproveRequest{})
	s.Require().NoError(err)

	params := utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "asc"}

	list, total, err := s.moderation.ListQueue(s.ctx, repository.QueueNew, params)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(fresh.ID, list[0].ID)

	list, _, err = s.moderation.ListQueue(s.ctx, repository.QueueReadyForReview, params)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(ready.ID, list[0].ID)

	stats, err := s.moderation.GetStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), stats[repository.QueuePublished])
	s.Equal(int64(3), stats[repository.QueueAll])
	s.Equal(int64(0), stats[repository.QueueArchived])
}

func (s *ServiceTestSuite) TestNotificationFailureIsSwallowed() {
	failing := &mockNotifier{}
	failing.On("Send", mock.Anything, mock.Anything).Return(errors.New("webhook down"))
	s.notifier = failing
	s.wire(s.store, failing)

	b := s.submitReady()
	b, err := s.moderation.Approve(s.ctx, s.staff, b.ID, ApproveRequest{})
	s.Require().NoError(err)
	s.True(b.State().IsPublished())
	s.Len(s.sent(), 1)
}

func (s *ServiceTestSuite) TestModerationSurvivesMirrorFailure() {
	b := s.submitReady()
	s.wire(failingMirrorStore{s.store}, s.notifier)

	b, err := s.moderation.Approve(s.ctx, s.staff, b.ID, ApproveRequest{})
	s.Require().NoError(err)
	s.True(b.State().IsPublished())

	// The stored projection is stale until reconciled.
	app, err := s.store.GetApplication(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal(models.ApplicationStatusPending, app.Status)

	report, err := NewReconcileService(s.store, s.intake).ReconcileApplications(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Updated)

	app, err = s.store.GetApplication(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal(models.ApplicationStatusApproved, app.Status)
}

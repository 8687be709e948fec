// internal/lifecycle/machine_test.go
package lifecycle

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MachineTestSuite struct {
	suite.Suite
	owner Actor
	staff Actor
}

func (s *MachineTestSuite) SetupTest() {
	s.owner = Actor{ID: uuid.New()}
	s.staff = Actor{ID: uuid.New(), Staff: true}
}

// submitted returns a freshly created listing built from the profile.
func (s *MachineTestSuite) submitted(p Profile) Snapshot {
	tr, err := Fire(Snapshot{ID: uuid.New(), Profile: p}, Event{Type: EventSubmit, Actor: s.owner})
	s.Require().NoError(err)
	return Snapshot{ID: uuid.New(), State: tr.To, Profile: p, IsPublishReady: tr.Assessment.IsPublishReady}
}

func (s *MachineTestSuite) fire(snap Snapshot, e Event) Snapshot {
	tr, err := Fire(snap, e)
	s.Require().NoError(err)
	snap.State = tr.To
	if tr.Assessment != nil {
		snap.IsPublishReady = tr.Assessment.IsPublishReady
	}
	return snap
}

func (s *MachineTestSuite) TestSubmitCreatesDraft() {
	tr, err := Fire(Snapshot{ID: uuid.New(), Profile: contactOnlyProfile()}, Event{Type: EventSubmit, Actor: s.owner})
	s.Require().NoError(err)

	s.Equal(State{ApplicationStatusSubmitted, BusinessStatusDraft, AdminStatusActive}, tr.To)
	s.Require().NotNil(tr.Assessment)
	s.Equal(30, tr.Assessment.CompletionPercent)
	s.False(tr.Assessment.IsPublishReady)
}

func (s *MachineTestSuite) TestSubmitOnlyFromZeroState() {
	snap := s.submitted(contactOnlyProfile())
	_, err := Fire(snap, Event{Type: EventSubmit, Actor: s.owner})
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *MachineTestSuite) TestRecomputePromotesWhenReady() {
	snap := s.submitted(contactOnlyProfile())

	snap.Profile = readyProfile()
	tr, err := Fire(snap, Event{Type: EventRecompute, Actor: s.owner})
	s.Require().NoError(err)

	s.Equal(ApplicationStatusReadyForReview, tr.To.Application)
	s.Equal(BusinessStatusDraft, tr.To.Business)
	s.Equal(60, tr.Assessment.CompletionPercent)
	s.True(tr.Assessment.IsPublishReady)
}

func (s *MachineTestSuite) TestRecomputeNeverDemotes() {
	snap := s.submitted(readyProfile())
	snap = s.fire(snap, Event{Type: EventRecompute})
	s.Equal(ApplicationStatusReadyForReview, snap.State.Application)

	snap.Profile.Latitude = nil
	tr, err := Fire(snap, Event{Type: EventRecompute})
	s.Require().NoError(err)
	s.Equal(ApplicationStatusReadyForReview, tr.To.Application)
	s.False(tr.Assessment.IsPublishReady)
	s.Contains(tr.Assessment.MissingFields, "Address and map location")
}

func (s *MachineTestSuite) TestRecomputeIsIdempotent() {
	snap := s.submitted(completeProfile())
	first, err := Fire(snap, Event{Type: EventRecompute})
	s.Require().NoError(err)

	snap.State = first.To
	second, err := Fire(snap, Event{Type: EventRecompute})
	s.Require().NoError(err)

	s.Equal(first.To, second.To)
	s.Equal(first.Assessment, second.Assessment)
	s.False(second.StatusChanged())
}

func (s *MachineTestSuite) TestRecomputeLeavesPublishedListingAlone() {
	snap := s.submitted(completeProfile())
	snap = s.fire(snap, Event{Type: EventApprove, Actor: s.staff})

	tr, err := Fire(snap, Event{Type: EventRecompute})
	s.Require().NoError(err)
	s.Equal(snap.State, tr.To)
}

// A reject needs a real reason; a rejected listing can then be asked for more info.
func (s *MachineTestSuite) TestRejectAndRequestInfo() {
	snap := s.submitted(readyProfile())

	_, err := Fire(snap, Event{Type: EventReject, Actor: s.staff, Reason: "ok"})
	s.ErrorIs(err, ErrValidation)

	snap = s.fire(snap, Event{Type: EventReject, Actor: s.staff, Reason: "Photos are not of the business"})
	s.Equal(ApplicationStatusRejected, snap.State.Application)
	s.Equal(BusinessStatusDraft, snap.State.Business)

	_, err = Fire(snap, Event{Type: EventReject, Actor: s.staff, Reason: "Photos are not of the business"})
	s.ErrorIs(err, ErrInvalidTransition)

	snap = s.fire(snap, Event{
		Type:          EventRequestInfo,
		Actor:         s.staff,
		Notes:         "Please add a logo",
		MissingFields: []string{"logo"},
	})
	s.Equal(ApplicationStatusNeedsInfo, snap.State.Application)
	s.Equal(BusinessStatusDraft, snap.State.Business)
}

func (s *MachineTestSuite) TestValidationIsCheckedBeforeState() {
	snap := s.submitted(contactOnlyProfile())
	snap = s.fire(snap, Event{Type: EventDelete, Actor: s.staff, Reason: "spam"})

	// Even on a deleted listing a short reason reports the validation problem first.
	_, err := Fire(snap, Event{Type: EventReject, Actor: s.staff, Reason: "no"})
	s.ErrorIs(err, ErrValidation)
}

// Unpublishing sends the listing back to needs_info; it returns only after a new publish request and approval.
func (s *MachineTestSuite) TestUnpublishCycle() {
	snap := s.submitted(completeProfile())
	snap = s.fire(snap, Event{Type: EventRecompute})
	snap = s.fire(snap, Event{Type: EventRequestPublish, Actor: s.owner})
	snap = s.fire(snap, Event{Type: EventApprove, Actor: s.staff})
	s.True(snap.State.IsPublished())
	s.Equal(ApplicationStatusApproved, snap.State.Application)

	_, err := Fire(snap, Event{Type: EventUnpublish, Actor: s.staff, Reason: "short"})
	s.ErrorIs(err, ErrValidation)

	snap = s.fire(snap, Event{Type: EventUnpublish, Actor: s.staff, Reason: "Reported as permanently closed"})
	s.Equal(State{ApplicationStatusNeedsInfo, BusinessStatusDraft, AdminStatusActive}, snap.State)

	_, err = Fire(snap, Event{Type: EventUnpublish, Actor: s.staff, Reason: "Reported as permanently closed"})
	s.ErrorIs(err, ErrInvalidTransition)

	snap = s.fire(snap, Event{Type: EventRequestPublish, Actor: s.owner})
	s.Equal(ApplicationStatusReadyForReview, snap.State.Application)
	snap = s.fire(snap, Event{Type: EventApprove, Actor: s.staff})
	s.True(snap.State.IsPublished())
}

func (s *MachineTestSuite) TestApproveTwiceIsInvalid() {
	snap := s.submitted(completeProfile())
	snap = s.fire(snap, Event{Type: EventApprove, Actor: s.staff})

	_, err := Fire(snap, Event{Type: EventApprove, Actor: s.staff})
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *MachineTestSuite) TestRequestPublishNeedsReadiness() {
	snap := s.submitted(contactOnlyProfile())

	_, err := Fire(snap, Event{Type: EventRequestPublish, Actor: s.owner})
	s.Require().ErrorIs(err, ErrNotPublishReady)

	var notReady *NotReadyError
	s.Require().True(errors.As(err, &notReady))
	s.False(notReady.Stale)
	s.Contains(notReady.MissingFields, "Address and map location")
	s.Contains(notReady.UnmetRequirements, "Opening hours with valid times")
}

func (s *MachineTestSuite) TestRequestPublishRefusesStaleReadiness() {
	snap := s.submitted(contactOnlyProfile())
	// Profile completed but never recomputed.
	snap.Profile = readyProfile()

	_, err := Fire(snap, Event{Type: EventRequestPublish, Actor: s.owner})
	var notReady *NotReadyError
	s.Require().True(errors.As(err, &notReady))
	s.True(notReady.Stale)
}

func (s *MachineTestSuite) TestRequestPublishRefusesStaleStoredFlag() {
	snap := s.submitted(readyProfile())
	snap = s.fire(snap, Event{Type: EventRecompute})
	s.True(snap.IsPublishReady)

	// Stored flag still says ready but the profile regressed.
	snap.Profile.Description = "Short"
	_, err := Fire(snap, Event{Type: EventRequestPublish, Actor: s.owner})
	s.ErrorIs(err, ErrNotPublishReady)
}

func (s *MachineTestSuite) TestStaffOnlyEvents() {
	snap := s.submitted(completeProfile())
	events := []Event{
		{Type: EventApprove},
		{Type: EventReject, Reason: "Not a real business"},
		{Type: EventRequestInfo, Notes: "Please add photos"},
		{Type: EventUnpublish, Reason: "Reported as closed"},
		{Type: EventArchive},
		{Type: EventRestore},
		{Type: EventDelete, Reason: "spam"},
	}
	for _, e := range events {
		e.Actor = s.owner
		_, err := Fire(snap, e)
		s.ErrorIs(err, ErrForbidden, string(e.Type))
	}
}

func (s *MachineTestSuite) TestArchiveRestore() {
	snap := s.submitted(completeProfile())
	snap = s.fire(snap, Event{Type: EventArchive, Actor: s.staff})
	s.Equal(AdminStatusArchived, snap.State.Admin)

	_, err := Fire(snap, Event{Type: EventArchive, Actor: s.staff})
	s.ErrorIs(err, ErrInvalidTransition)

	_, err = Fire(snap, Event{Type: EventApprove, Actor: s.staff})
	s.ErrorIs(err, ErrInvalidTransition)

	snap = s.fire(snap, Event{Type: EventRestore, Actor: s.staff})
	s.Equal(AdminStatusActive, snap.State.Admin)

	_, err = Fire(snap, Event{Type: EventRestore, Actor: s.staff})
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *MachineTestSuite) TestArchivedPublishedListingIsHidden() {
	snap := s.submitted(completeProfile())
	snap = s.fire(snap, Event{Type: EventApprove, Actor: s.staff})
	snap = s.fire(snap, Event{Type: EventArchive, Actor: s.staff})

	s.Equal(BusinessStatusPublished, snap.State.Business)
	s.False(snap.State.IsPublished())
}

func (s *MachineTestSuite) TestMarkDuplicate() {
	snap := s.submitted(contactOnlyProfile())

	_, err := Fire(snap, Event{Type: EventMarkDuplicate, Actor: s.staff})
	s.ErrorIs(err, ErrValidation)

	self := snap.ID
	_, err = Fire(snap, Event{Type: EventMarkDuplicate, Actor: s.staff, CanonicalID: &self})
	s.ErrorIs(err, ErrValidation)

	canonical := uuid.New()
	snap = s.fire(snap, Event{Type: EventMarkDuplicate, Actor: s.staff, CanonicalID: &canonical})
	s.Equal(AdminStatusArchived, snap.State.Admin)

	// Re-pointing an archived duplicate is allowed.
	other := uuid.New()
	snap = s.fire(snap, Event{Type: EventMarkDuplicate, Actor: s.staff, CanonicalID: &other})
	s.Equal(AdminStatusArchived, snap.State.Admin)
}

func (s *MachineTestSuite) TestDeleteIsTerminal() {
	snap := s.submitted(completeProfile())

	_, err := Fire(snap, Event{Type: EventDelete, Actor: s.staff, Reason: "  "})
	s.ErrorIs(err, ErrValidation)

	snap = s.fire(snap, Event{Type: EventDelete, Actor: s.staff, Reason: "Owner asked for removal"})
	s.Equal(State{ApplicationStatusDeleted, BusinessStatusDeleted, AdminStatusDeleted}, snap.State)
	s.True(snap.State.IsDeleted())

	canonical := uuid.New()
	events := []Event{
		{Type: EventRecompute},
		{Type: EventRequestPublish, Actor: s.owner},
		{Type: EventApprove, Actor: s.staff},
		{Type: EventReject, Actor: s.staff, Reason: "Not a real business"},
		{Type: EventRequestInfo, Actor: s.staff, Notes: "Please add photos"},
		{Type: EventUnpublish, Actor: s.staff, Reason: "Reported as closed"},
		{Type: EventArchive, Actor: s.staff},
		{Type: EventRestore, Actor: s.staff},
		{Type: EventMarkDuplicate, Actor: s.staff, CanonicalID: &canonical},
		{Type: EventDelete, Actor: s.staff, Reason: "again"},
	}
	for _, e := range events {
		_, err := Fire(snap, e)
		s.ErrorIs(err, ErrTerminal, string(e.Type))
	}
}

func (s *MachineTestSuite) TestUnknownEvent() {
	snap := s.submitted(contactOnlyProfile())
	_, err := Fire(snap, Event{Type: "teleport", Actor: s.staff})
	s.ErrorIs(err, ErrValidation)
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineTestSuite))
}

// Every reachable state keeps published ⇒ approved and the readiness floor.
func TestReachableStatesAreConsistent(t *testing.T) {
	staff := Actor{ID: uuid.New(), Staff: true}
	owner := Actor{ID: uuid.New()}
	canonical := uuid.New()
	events := []Event{
		{Type: EventRecompute, Actor: owner},
		{Type: EventRequestPublish, Actor: owner},
		{Type: EventApprove, Actor: staff},
		{Type: EventReject, Actor: staff, Reason: "Not a real business"},
		{Type: EventRequestInfo, Actor: staff, Notes: "Please add photos"},
		{Type: EventUnpublish, Actor: staff, Reason: "Reported as closed"},
		{Type: EventArchive, Actor: staff},
		{Type: EventRestore, Actor: staff},
		{Type: EventMarkDuplicate, Actor: staff, CanonicalID: &canonical},
		{Type: EventDelete, Actor: staff, Reason: "spam"},
	}

	for _, profile := range []Profile{contactOnlyProfile(), readyProfile(), completeProfile()} {
		tr, err := Fire(Snapshot{ID: uuid.New(), Profile: profile}, Event{Type: EventSubmit, Actor: owner})
		require.NoError(t, err)
		start := Snapshot{ID: uuid.New(), State: tr.To, Profile: profile, IsPublishReady: tr.Assessment.IsPublishReady}

		seen := map[State]bool{start.State: true}
		frontier := []Snapshot{start}
		for len(frontier) > 0 {
			snap := frontier[0]
			frontier = frontier[1:]
			for _, e := range events {
				next, err := Fire(snap, e)
				if err != nil {
					continue
				}
				assert.True(t, next.To.Consistent(), "%s from %+v", e.Type, snap.State)
				if next.Assessment != nil && next.Assessment.IsPublishReady {
					assert.GreaterOrEqual(t, next.Assessment.CompletionPercent, MinPublishCompletion)
				}
				if e.Type == EventApprove {
					assert.True(t, next.To.IsPublished())
				}
				if seen[next.To] {
					continue
				}
				seen[next.To] = true
				following := snap
				following.State = next.To
				if next.Assessment != nil {
					following.IsPublishReady = next.Assessment.IsPublishReady
				}
				frontier = append(frontier, following)
			}
		}
	}
}

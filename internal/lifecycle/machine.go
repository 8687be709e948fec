// internal/lifecycle/machine.go
package lifecycle

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MinReasonLength applies to reject reasons, request-info notes and unpublish reasons.
const MinReasonLength = 10

// EventType names a lifecycle event.
type EventType string

const (
	EventSubmit         EventType = "submit"
	EventRecompute      EventType = "recompute"
	EventRequestPublish EventType = "request_publish"
	EventApprove        EventType = "approve"
	EventReject         EventType = "reject"
	EventRequestInfo    EventType = "request_info"
	EventUnpublish      EventType = "unpublish"
	EventArchive        EventType = "archive"
	EventMarkDuplicate  EventType = "mark_duplicate"
	EventRestore        EventType = "restore"
	EventDelete         EventType = "delete"
)

var staffOnly = map[EventType]bool{
	EventApprove:       true,
	EventReject:        true,
	EventRequestInfo:   true,
	EventUnpublish:     true,
	EventArchive:       true,
	EventMarkDuplicate: true,
	EventRestore:       true,
	EventDelete:        true,
}

// StaffOnly reports whether only staff may fire the event.
func (e EventType) StaffOnly() bool {
	return staffOnly[e]
}

// Actor is whoever fires an event. The zero Actor is the system.
type Actor struct {
	ID    uuid.UUID
	Staff bool
}

// Event is an intended lifecycle change.
type Event struct {
	Type          EventType
	Actor         Actor
	Notes         string
	Reason        string
	MissingFields []string
	CanonicalID   *uuid.UUID
}

// Snapshot is what the machine needs to know about a listing.
type Snapshot struct {
	ID             uuid.UUID
	State          State
	Profile        Profile
	IsPublishReady bool
}

// Transition is the accepted outcome of an event. Assessment is set for the
// events that re-run the scorer.
type Transition struct {
	Event      Event
	From       State
	To         State
	Assessment *Assessment
}

// StatusChanged reports whether any of the three statuses moved.
func (t Transition) StatusChanged() bool {
	return t.From != t.To
}

// Fire validates the event against the snapshot and returns the next state. A
// rejected event never yields a partial transition.
func Fire(s Snapshot, e Event) (Transition, error) {
	if e.Type.StaffOnly() && !e.Actor.Staff {
		return Transition{}, fmt.Errorf("%w: %s requires staff", ErrForbidden, e.Type)
	}
	if err := validateEvent(s, e); err != nil {
		return Transition{}, err
	}
	if e.Type != EventSubmit && s.State.IsDeleted() {
		return Transition{}, ErrTerminal
	}

	from := s.State
	to := s.State
	var assessment *Assessment

	switch e.Type {
	case EventSubmit:
		if !from.IsZero() {
			return Transition{}, invalidTransition(e.Type, from)
		}
		a := Assess(s.Profile)
		assessment = &a
		to = State{
			Application: ApplicationStatusSubmitted,
			Business:    BusinessStatusDraft,
			Admin:       AdminStatusActive,
		}

	case EventRecompute:
		a := Assess(s.Profile)
		assessment = &a
		// Readiness is sticky: a listing is promoted once and never demoted here.
		if a.IsPublishReady && from.Application == ApplicationStatusSubmitted {
			to.Application = ApplicationStatusReadyForReview
		}

	case EventRequestPublish:
		if from.Admin != AdminStatusActive || from.Business == BusinessStatusPublished {
			return Transition{}, invalidTransition(e.Type, from)
		}
		a := Assess(s.Profile)
		if !a.IsPublishReady || !s.IsPublishReady {
			return Transition{}, &NotReadyError{
				MissingFields:     a.MissingFields,
				UnmetRequirements: a.UnmetRequirements,
				Stale:             a.IsPublishReady && !s.IsPublishReady,
			}
		}
		assessment = &a
		to.Application = ApplicationStatusReadyForReview
		to.Business = BusinessStatusDraft

	case EventApprove:
		if from.Admin != AdminStatusActive || from.Business == BusinessStatusPublished {
			return Transition{}, invalidTransition(e.Type, from)
		}
		to.Application = ApplicationStatusApproved
		to.Business = BusinessStatusPublished

	case EventReject:
		if from.Application == ApplicationStatusRejected {
			return Transition{}, invalidTransition(e.Type, from)
		}
		to.Application = ApplicationStatusRejected
		to.Business = BusinessStatusDraft

	case EventRequestInfo:
		to.Application = ApplicationStatusNeedsInfo
		to.Business = BusinessStatusDraft

	case EventUnpublish:
		if from.Business != BusinessStatusPublished {
			return Transition{}, invalidTransition(e.Type, from)
		}
		to.Application = ApplicationStatusNeedsInfo
		to.Business = BusinessStatusDraft

	case EventArchive:
		if from.Admin != AdminStatusActive {
			return Transition{}, invalidTransition(e.Type, from)
		}
		to.Admin = AdminStatusArchived

	case EventMarkDuplicate:
		to.Admin = AdminStatusArchived

	case EventRestore:
		if from.Admin != AdminStatusArchived {
			return Transition{}, invalidTransition(e.Type, from)
		}
		to.Admin = AdminStatusActive

	case EventDelete:
		to = State{
			Application: ApplicationStatusDeleted,
			Business:    BusinessStatusDeleted,
			Admin:       AdminStatusDeleted,
		}

	default:
		return Transition{}, validationError("unknown event %q", e.Type)
	}

	if !to.Consistent() {
		return Transition{}, invalidTransition(e.Type, from)
	}

	return Transition{Event: e, From: from, To: to, Assessment: assessment}, nil
}

// Consistent reports whether the state satisfies the cross-status invariants.
func (s State) Consistent() bool {
	if s.Business == BusinessStatusPublished && s.Application != ApplicationStatusApproved {
		return false
	}
	if s.Business == BusinessStatusDeleted && (s.Application != ApplicationStatusDeleted || s.Admin != AdminStatusDeleted) {
		return false
	}
	return true
}

func validateEvent(s Snapshot, e Event) error {
	switch e.Type {
	case EventReject:
		if textLength(e.Reason) < MinReasonLength {
			return validationError("rejection reason must be at least %d characters", MinReasonLength)
		}
	case EventRequestInfo:
		if textLength(e.Notes) < MinReasonLength {
			return validationError("notes must be at least %d characters", MinReasonLength)
		}
	case EventUnpublish:
		if textLength(e.Reason) < MinReasonLength {
			return validationError("unpublish reason must be at least %d characters", MinReasonLength)
		}
	case EventMarkDuplicate:
		if e.CanonicalID == nil || *e.CanonicalID == uuid.Nil {
			return validationError("canonical listing id is required")
		}
		if *e.CanonicalID == s.ID {
			return validationError("a listing cannot be a duplicate of itself")
		}
	case EventDelete:
		if strings.TrimSpace(e.Reason) == "" {
			return validationError("delete reason is required")
		}
	}
	return nil
}

func textLength(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

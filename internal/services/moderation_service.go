// internal/services/moderation_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/repository"
	"github.com/localbiz/directory-backend/internal/utils"
)

// ModerationService carries out staff actions on listings.
type ModerationService struct {
	transitioner
}

type ApproveRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=10,max=2000"`
	Notes  string `json:"notes" validate:"max=2000"`
}

type RequestInfoRequest struct {
	Notes         string   `json:"notes" validate:"required,min=10,max=2000"`
	MissingFields []string `json:"missing_fields" validate:"max=20"`
}

type UnpublishRequest struct {
	Reason string `json:"reason" validate:"required,min=10,max=2000"`
}

type ArchiveRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

type MarkDuplicateRequest struct {
	CanonicalID string `json:"canonical_id" validate:"required,uuid"`
}

type DeleteRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// QueueStats counts listings per staff queue.
type QueueStats map[repository.Queue]int64

func NewModerationService(store repository.Store, mirror *ApplicationMirror, notifications *NotificationService) *ModerationService {
	return &ModerationService{transitioner{store: store, mirror: mirror, notifications: notifications}}
}

func (s *ModerationService) Approve(ctx context.Context, staff lifecycle.Actor, id uuid.UUID, req ApproveRequest) (*models.Business, error) {
	return s.apply(ctx, id, lifecycle.Event{Type: lifecycle.EventApprove, Actor: staff, Notes: req.Notes})
}

func (s *ModerationService) Reject(ctx context.Context, staff lifecycle.Actor, id uuid.UUID, req RejectRequest) (*models.Business, error) {
	return s.apply(ctx, id, lifecycle.Event{Type: lifecycle.EventReject, Actor: staff, Reason: req.Reason, Notes: req.Notes})
}

func (s *ModerationService) RequestInfo(ctx context.Context, staff lifecycle.Actor, id uuid.UUID, req RequestInfoRequest) (*models.Business, error) {
	return s.apply(ctx, id, lifecycle.Event{
		Type:          lifecycle.EventRequestInfo,
		Actor:         staff,
		Notes:         req.Notes,
		MissingFields: req.MissingFields,
	})
}

func (s *ModerationService) Unpublish(ctx context.Context, staff lifecycle.Actor, id uuid.UUID, req UnpublishRequest) (*models.Business, error) {
	return s.apply(ctx, id, lifecycle.Event{Type: lifecycle.EventUnpublish, Actor: staff, Reason: req.Reason})
}

func (s *ModerationService) Archive(ctx context.Context, staff lifecycle.Actor, id uuid.UUID, req ArchiveRequest) (*models.Business, error) {
	return s.apply(ctx, id, lifecycle.Event{Type: lifecycle.EventArchive, Actor: staff, Reason: req.Reason})
}

func (s *ModerationService) Restore(ctx context.Context, staff lifecycle.Actor, id uuid.UUID) (*models.Business, error) {
	return s.apply(ctx, id, lifecycle.Event{Type: lifecycle.EventRestore, Actor: staff})
}

// MarkDuplicate archives the listing as a duplicate of a live canonical listing.
func (s *ModerationService) MarkDuplicate(ctx context.Context, staff lifecycle.Actor, id uuid.UUID, req MarkDuplicateRequest) (*models.Business, error) {
	canonicalID, err := uuid.Parse(req.CanonicalID)
	if err != nil {
		return nil, validationError("canonical_id must be a valid id")
	}

	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if canonicalID != b.ID {
		if _, err := s.load(ctx, canonicalID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: canonical business %s", ErrNotFound, canonicalID)
			}
			return nil, err
		}
	}

	if _, err := s.fire(ctx, b, lifecycle.Event{Type: lifecycle.EventMarkDuplicate, Actor: staff, CanonicalID: &canonicalID}); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *ModerationService) Delete(ctx context.Context, staff lifecycle.Actor, id uuid.UUID, req DeleteRequest) (*models.Business, error) {
	return s.apply(ctx, id, lifecycle.Event{Type: lifecycle.EventDelete, Actor: staff, Reason: req.Reason})
}

// Recompute rescores a listing on a staff member's behalf.
func (s *ModerationService) Recompute(ctx context.Context, staff lifecycle.Actor, id uuid.UUID) (*models.Business, error) {
	return s.apply(ctx, id, lifecycle.Event{Type: lifecycle.EventRecompute, Actor: staff})
}

func (s *ModerationService) apply(ctx context.Context, id uuid.UUID, e lifecycle.Event) (*models.Business, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.fire(ctx, b, e); err != nil {
		return nil, err
	}
	return b, nil
}

// ListQueue returns one page of a staff work queue.
func (s *ModerationService) ListQueue(ctx context.Context, queue repository.Queue, params utils.PaginationParams) ([]models.Business, int64, error) {
	filter := repository.BusinessFilter{
		Queue:    queue,
		Category: params.Category,
		Search:   params.Search,
	}
	list, total, err := s.store.ListBusinesses(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list businesses: %w", err)
	}
	return list, total, nil
}

func (s *ModerationService) GetBusiness(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	return s.load(ctx, id)
}

// History lists the lifecycle events of a listing, including deleted ones.
func (s *ModerationService) History(ctx context.Context, id uuid.UUID) ([]models.LifecycleEvent, error) {
	if _, err := s.store.GetBusinessUnscoped(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: business %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load business: %w", err)
	}

	events, err := s.store.ListEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// GetStats counts every staff queue.
func (s *ModerationService) GetStats(ctx context.Context) (QueueStats, error) {
	stats := QueueStats{}
	for _, queue := range repository.Queues {
		count, err := s.store.CountBusinesses(ctx, repository.BusinessFilter{Queue: queue})
		if err != nil {
			return nil, fmt.Errorf("failed to count %s queue: %w", queue, err)
		}
		stats[queue] = count
	}
	return stats, nil
}

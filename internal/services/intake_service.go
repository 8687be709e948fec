// internal/services/intake_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/metrics"
	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/repository"
	"github.com/localbiz/directory-backend/internal/validation"
)

// SubmitModeNew forces a new listing even when the owner already has one.
const SubmitModeNew = "new"

type SubmitRequest struct {
	Token   string          `json:"token"`
	Payload json.RawMessage `json:"payload"`
	Mode    string          `json:"mode"`
}

type SubmitResult struct {
	Business *models.Business `json:"business"`
	Created  bool             `json:"created"`
}

// IntakeService turns onboarding wizard submissions into listings.
type IntakeService struct {
	transitioner
	identity   IdentityResolver
	normalizer normalizer
}

func NewIntakeService(store repository.Store, mirror *ApplicationMirror, identity IdentityResolver, categories *CategoryCatalog) *IntakeService {
	return &IntakeService{
		transitioner: transitioner{store: store, mirror: mirror},
		identity:     identity,
		normalizer:   normalizer{categories: categories},
	}
}

// Submit creates a listing from the wizard payload, or returns the owner's
// existing listing unless a new one is explicitly requested.
func (s *IntakeService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if strings.TrimSpace(req.Token) == "" {
		return nil, validationError("identity token is required")
	}
	if req.Mode != "" && req.Mode != SubmitModeNew {
		return nil, validationError("unknown submit mode %q", req.Mode)
	}

	identity, err := s.identity.Resolve(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	payload, document, err := validation.DecodeWizard(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if req.Mode != SubmitModeNew {
		existing, err := s.store.FindBusinessByOwner(ctx, identity.UserID)
		if err == nil {
			logrus.WithFields(logrus.Fields{
				"business_id": existing.ID,
				"owner_id":    identity.UserID,
			}).Info("Owner already has a listing, returning it")
			return &SubmitResult{Business: existing, Created: false}, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up existing business: %w", err)
		}
	}

	b, err := s.create(ctx, identity.UserID, payload)
	if err != nil {
		return nil, err
	}

	s.mirror.Sync(ctx, b, models.JSONB(document))

	return &SubmitResult{Business: b, Created: true}, nil
}

// create fires submit on a fresh listing and stores it with its first event.
func (s *IntakeService) create(ctx context.Context, owner uuid.UUID, payload *validation.WizardPayload) (*models.Business, error) {
	b := s.normalizer.listingFromWizard(owner, payload)
	b.ID = uuid.New()

	e := lifecycle.Event{Type: lifecycle.EventSubmit, Actor: lifecycle.Actor{ID: owner}}
	tr, err := lifecycle.Fire(b.Snapshot(), e)
	if err != nil {
		metrics.LifecycleTransitions.WithLabelValues(string(e.Type), metrics.OutcomeRejected).Inc()
		return nil, err
	}

	now := time.Now().UTC()
	b.CreatedAt = now
	b.ApplyTransition(tr, now)

	err = s.store.Tx(ctx, func(tx repository.Store) error {
		if err := tx.CreateBusiness(ctx, b); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, models.NewLifecycleEvent(b.ID, tr, now))
	})
	if err != nil {
		metrics.LifecycleTransitions.WithLabelValues(string(e.Type), metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("failed to create business: %w", err)
	}

	s.record(b.ID, tr)
	return b, nil
}

// createFromDocument re-runs intake on a stored wizard payload.
func (s *IntakeService) createFromDocument(ctx context.Context, owner uuid.UUID, document models.JSONB) (*models.Business, error) {
	raw, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stored payload: %w", err)
	}
	payload, _, err := validation.DecodeWizard(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return s.create(ctx, owner, payload)
}

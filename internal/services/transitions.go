// internal/services/transitions.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/metrics"
	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/repository"
)

// transitioner is the shared write path for lifecycle events: fire the
// machine, persist the listing and its event together, then mirror and notify.
type transitioner struct {
	store         repository.Store
	mirror        *ApplicationMirror
	notifications *NotificationService
}

func (t *transitioner) load(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	b, err := t.store.GetBusiness(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: business %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load business: %w", err)
	}
	return b, nil
}

// fire applies e to b and stores the result. b is updated in place.
func (t *transitioner) fire(ctx context.Context, b *models.Business, e lifecycle.Event) (lifecycle.Transition, error) {
	tr, err := lifecycle.Fire(b.Snapshot(), e)
	if err != nil {
		metrics.LifecycleTransitions.WithLabelValues(string(e.Type), metrics.OutcomeRejected).Inc()
		return lifecycle.Transition{}, err
	}

	now := time.Now().UTC()
	b.ApplyTransition(tr, now)

	err = t.store.Tx(ctx, func(tx repository.Store) error {
		if err := tx.SaveBusiness(ctx, b); err != nil {
			return err
		}
		// A recompute that moves no status is not worth a history row.
		if e.Type == lifecycle.EventRecompute && !tr.StatusChanged() {
			return nil
		}
		return tx.AppendEvent(ctx, models.NewLifecycleEvent(b.ID, tr, now))
	})
	if err != nil {
		metrics.LifecycleTransitions.WithLabelValues(string(e.Type), metrics.OutcomeFailed).Inc()
		if errors.Is(err, repository.ErrNotFound) {
			return lifecycle.Transition{}, fmt.Errorf("%w: business %s", ErrNotFound, b.ID)
		}
		return lifecycle.Transition{}, fmt.Errorf("failed to save business: %w", err)
	}

	t.record(b.ID, tr)
	t.mirror.Sync(ctx, b, nil)
	t.notifications.NotifyTransition(b, e)

	return tr, nil
}

func (t *transitioner) record(id uuid.UUID, tr lifecycle.Transition) {
	metrics.LifecycleTransitions.WithLabelValues(string(tr.Event.Type), metrics.OutcomeAccepted).Inc()
	if tr.Assessment != nil {
		metrics.CompletionPercent.Observe(float64(tr.Assessment.CompletionPercent))
	}

	logrus.WithFields(logrus.Fields{
		"business_id":        id,
		"event":              tr.Event.Type,
		"actor_id":           tr.Event.Actor.ID,
		"application_status": tr.To.Application,
		"business_status":    tr.To.Business,
		"admin_status":       tr.To.Admin,
	}).Info("Lifecycle event applied")
}

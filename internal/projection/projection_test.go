// internal/projection/projection_test.go
package projection

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/models"
)

func listing(status lifecycle.ApplicationStatus) *models.Business {
	return &models.Business{
		BaseModel:         models.BaseModel{ID: uuid.New()},
		OwnerID:           uuid.New(),
		Name:              "Librería El Sótano",
		ApplicationStatus: status,
	}
}

func TestSimplifiedStatus(t *testing.T) {
	cases := map[lifecycle.ApplicationStatus]models.ApplicationStatus{
		lifecycle.ApplicationStatusSubmitted:      models.ApplicationStatusPending,
		lifecycle.ApplicationStatusReadyForReview: models.ApplicationStatusPending,
		lifecycle.ApplicationStatusNeedsInfo:      models.ApplicationStatusNeedsInfo,
		lifecycle.ApplicationStatusApproved:       models.ApplicationStatusApproved,
		lifecycle.ApplicationStatusRejected:       models.ApplicationStatusRejected,
		lifecycle.ApplicationStatusDeleted:        models.ApplicationStatusDeleted,
	}
	for in, want := range cases {
		assert.Equal(t, want, SimplifiedStatus(in), string(in))
	}
}

func TestBuildWithoutStoredRow(t *testing.T) {
	b := listing(lifecycle.ApplicationStatusReadyForReview)
	now := time.Now()

	app, err := Build(b, nil, now)
	require.NoError(t, err)
	assert.Equal(t, b.OwnerID, app.OwnerID)
	require.NotNil(t, app.BusinessID)
	assert.Equal(t, b.ID, *app.BusinessID)
	assert.Equal(t, "Librería El Sótano", app.BusinessName)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.Equal(t, now, *app.LastSyncedAt)
}

func TestBuildKeepsWizardPayload(t *testing.T) {
	b := listing(lifecycle.ApplicationStatusApproved)
	stored := &models.Application{
		OwnerID:       b.OwnerID,
		BusinessID:    &b.ID,
		Status:        models.ApplicationStatusPending,
		WizardPayload: models.JSONB{"name": "Librería El Sótano"},
	}

	app, err := Build(b, stored, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApproved, app.Status)
	assert.Equal(t, "Librería El Sótano", app.WizardPayload["name"])
	// The stored row is not mutated.
	assert.Equal(t, models.ApplicationStatusPending, stored.Status)
}

func TestBuildRefusesForeignApplication(t *testing.T) {
	b := listing(lifecycle.ApplicationStatusSubmitted)
	other := uuid.New()
	stored := &models.Application{OwnerID: b.OwnerID, BusinessID: &other}

	_, err := Build(b, stored, time.Now())
	assert.ErrorIs(t, err, ErrForeignApplication)

	app := Repoint(b, *stored, time.Now())
	assert.Equal(t, b.ID, *app.BusinessID)
}

func TestBuildSoftDeletedListing(t *testing.T) {
	b := listing(lifecycle.ApplicationStatusSubmitted)
	b.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}

	app, err := Build(b, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusDeleted, app.Status)
}

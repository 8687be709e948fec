// internal/repository/store.go
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/utils"
)

var (
	// ErrNotFound is returned when a record does not exist or is soft-deleted.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("record already exists")
)

// Store is the document store behind the directory. Implementations must make
// every method called inside Tx commit or roll back together.
type Store interface {
	Tx(ctx context.Context, fn func(Store) error) error

	CreateBusiness(ctx context.Context, b *models.Business) error
	SaveBusiness(ctx context.Context, b *models.Business) error
	GetBusiness(ctx context.Context, id uuid.UUID) (*models.Business, error)
	GetBusinessUnscoped(ctx context.Context, id uuid.UUID) (*models.Business, error)
	FindBusinessByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Business, error)
	ListBusinessesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Business, error)
	ListBusinesses(ctx context.Context, filter BusinessFilter, params utils.PaginationParams) ([]models.Business, int64, error)
	CountBusinesses(ctx context.Context, filter BusinessFilter) (int64, error)
	ListBusinessIDs(ctx context.Context) ([]uuid.UUID, error)

	AppendEvent(ctx context.Context, e *models.LifecycleEvent) error
	ListEvents(ctx context.Context, businessID uuid.UUID) ([]models.LifecycleEvent, error)

	GetApplication(ctx context.Context, ownerID uuid.UUID) (*models.Application, error)
	SaveApplication(ctx context.Context, app *models.Application) error
	ListApplications(ctx context.Context) ([]models.Application, error)

	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SortFields lists the columns listings may be sorted by.
var SortFields = []string{"created_at", "updated_at", "name", "completion_percent", "submitted_for_review_at", "published_at"}

// internal/repository/gorm_store.go
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/localbiz/directory-backend/internal/database"
	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/utils"
)

// GormStore keeps listings in PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Tx(ctx context.Context, fn func(Store) error) error {
	return database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) CreateBusiness(ctx context.Context, b *models.Business) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *GormStore) SaveBusiness(ctx context.Context, b *models.Business) error {
	return s.db.WithContext(ctx).Save(b).Error
}

func (s *GormStore) GetBusiness(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var b models.Business
	if err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *GormStore) GetBusinessUnscoped(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var b models.Business
	if err := s.db.WithContext(ctx).Unscoped().First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *GormStore) FindBusinessByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Business, error) {
	var b models.Business
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND business_status <> ?", ownerID, lifecycle.BusinessStatusDeleted).
		Order("created_at ASC").
		First(&b).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *GormStore) ListBusinessesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Business, error) {
	var businesses []models.Business
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&businesses).Error
	return businesses, err
}

func (s *GormStore) ListBusinesses(ctx context.Context, filter BusinessFilter, params utils.PaginationParams) ([]models.Business, int64, error) {
	var businesses []models.Business
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Business{}).Scopes(filter.Scope)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = utils.ApplySort(query, params, SortFields)
	if params.Limit > 0 {
		query = utils.ApplyPagination(query, params)
	}
	if err := query.Find(&businesses).Error; err != nil {
		return nil, 0, err
	}
	return businesses, total, nil
}

func (s *GormStore) CountBusinesses(ctx context.Context, filter BusinessFilter) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Business{}).Scopes(filter.Scope).Count(&total).Error
	return total, err
}

func (s *GormStore) ListBusinessIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Business{}).Order("created_at ASC").Pluck("id", &ids).Error
	return ids, err
}

func (s *GormStore) AppendEvent(ctx context.Context, e *models.LifecycleEvent) error {
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *GormStore) ListEvents(ctx context.Context, businessID uuid.UUID) ([]models.LifecycleEvent, error) {
	var events []models.LifecycleEvent
	err := s.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}

func (s *GormStore) GetApplication(ctx context.Context, ownerID uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := s.db.WithContext(ctx).First(&app, "owner_id = ?", ownerID).Error; err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (s *GormStore) SaveApplication(ctx context.Context, app *models.Application) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "owner_id"}}, UpdateAll: true}).
		Create(app).Error
}

func (s *GormStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	var apps []models.Application
	err := s.db.WithContext(ctx).Order("created_at ASC").Find(&apps).Error
	return apps, err
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) SaveUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Save(u).Error
}

func (s *GormStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(log).Error
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

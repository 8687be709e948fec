// internal/services/business_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/projection"
	"github.com/localbiz/directory-backend/internal/repository"
	"github.com/localbiz/directory-backend/internal/utils"
)

// BusinessService covers what owners do with their own listings, plus the
// public read side.
type BusinessService struct {
	transitioner
	normalizer normalizer
}

type LocationInput struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

type DayHoursInput struct {
	Open bool   `json:"open"`
	From string `json:"from" validate:"max=5"`
	To   string `json:"to" validate:"max=5"`
}

// UpdateBusinessRequest is a partial profile edit; nil fields are left alone.
type UpdateBusinessRequest struct {
	Name        *string                  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Category    *string                  `json:"category,omitempty" validate:"omitempty,max=100"`
	Phone       *string                  `json:"phone,omitempty" validate:"omitempty,phone"`
	WhatsApp    *string                  `json:"whatsapp,omitempty" validate:"omitempty,phone"`
	Email       *string                  `json:"email,omitempty" validate:"omitempty,email"`
	Address     *string                  `json:"address,omitempty" validate:"omitempty,max=500"`
	City        *string                  `json:"city,omitempty" validate:"omitempty,max=100"`
	Location    *LocationInput           `json:"location,omitempty"`
	Description *string                  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Schedule    map[string]DayHoursInput `json:"schedule,omitempty" validate:"omitempty,dive,keys,oneof=monday tuesday wednesday thursday friday saturday sunday,endkeys"`
	LogoURL     *string                  `json:"logo_url,omitempty" validate:"omitempty,max=500"`
	CoverURL    *string                  `json:"cover_url,omitempty" validate:"omitempty,max=500"`
	Gallery     []string                 `json:"gallery,omitempty" validate:"omitempty,max=30,dive,max=500"`
	SocialLinks map[string]string        `json:"social_links,omitempty" validate:"omitempty,max=10,dive,max=500"`
	Services    []string                 `json:"services,omitempty" validate:"omitempty,max=50,dive,max=200"`
	Products    []string                 `json:"products,omitempty" validate:"omitempty,max=50,dive,max=200"`
}

func NewBusinessService(store repository.Store, mirror *ApplicationMirror, notifications *NotificationService, categories *CategoryCatalog) *BusinessService {
	return &BusinessService{
		transitioner: transitioner{store: store, mirror: mirror, notifications: notifications},
		normalizer:   normalizer{categories: categories},
	}
}

// GetOwned loads a listing the owner owns.
func (s *BusinessService) GetOwned(ctx context.Context, owner uuid.UUID, id uuid.UUID) (*models.Business, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != owner {
		return nil, fmt.Errorf("%w: business belongs to another owner", ErrForbidden)
	}
	return b, nil
}

func (s *BusinessService) ListOwned(ctx context.Context, owner uuid.UUID) ([]models.Business, error) {
	list, err := s.store.ListBusinessesByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	return list, nil
}

// UpdateProfile merges the edit into the listing and rescores it.
func (s *BusinessService) UpdateProfile(ctx context.Context, owner uuid.UUID, id uuid.UUID, req UpdateBusinessRequest) (*models.Business, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	b, err := s.GetOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if b.BusinessStatus == lifecycle.BusinessStatusPublished {
		return nil, ErrPublishedReadOnly
	}

	s.merge(b, req)

	if _, err := s.fire(ctx, b, lifecycle.Event{Type: lifecycle.EventRecompute, Actor: lifecycle.Actor{ID: owner}}); err != nil {
		return nil, err
	}
	return b, nil
}

// Recompute rescores a listing for its owner.
func (s *BusinessService) Recompute(ctx context.Context, owner uuid.UUID, id uuid.UUID) (*models.Business, error) {
	b, err := s.GetOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.fire(ctx, b, lifecycle.Event{Type: lifecycle.EventRecompute, Actor: lifecycle.Actor{ID: owner}}); err != nil {
		return nil, err
	}
	return b, nil
}

// RecomputeAsSystem rescores any listing; it backs the maintenance CLI.
func (s *BusinessService) RecomputeAsSystem(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.fire(ctx, b, lifecycle.Event{Type: lifecycle.EventRecompute}); err != nil {
		return nil, err
	}
	return b, nil
}

// RequestPublish asks staff to review the listing for publication.
func (s *BusinessService) RequestPublish(ctx context.Context, owner uuid.UUID, id uuid.UUID) (*models.Business, error) {
	b, err := s.GetOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.fire(ctx, b, lifecycle.Event{Type: lifecycle.EventRequestPublish, Actor: lifecycle.Actor{ID: owner}}); err != nil {
		return nil, err
	}
	return b, nil
}

// GetApplication rebuilds the owner's application from the listing it tracks.
func (s *BusinessService) GetApplication(ctx context.Context, owner uuid.UUID) (*models.Application, error) {
	stored, err := s.store.GetApplication(ctx, owner)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if err != nil {
		stored = nil
	}

	var b *models.Business
	if stored != nil && stored.BusinessID != nil {
		b, err = s.store.GetBusinessUnscoped(ctx, *stored.BusinessID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load business: %w", err)
		}
	} else {
		b, err = s.store.FindBusinessByOwner(ctx, owner)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load business: %w", err)
		}
	}

	if b == nil {
		if stored != nil {
			return stored, nil
		}
		return nil, fmt.Errorf("%w: application for %s", ErrNotFound, owner)
	}

	app, err := projection.Build(b, stored, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetPublic returns a listing only while it is published and active.
func (s *BusinessService) GetPublic(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.State().IsPublished() {
		return nil, fmt.Errorf("%w: business %s", ErrNotFound, id)
	}
	return b, nil
}

func (s *BusinessService) ListPublic(ctx context.Context, params utils.PaginationParams, city string) ([]models.Business, int64, error) {
	filter := repository.BusinessFilter{
		PublicOnly: true,
		Category:   params.Category,
		City:       city,
		Search:     params.Search,
	}
	list, total, err := s.store.ListBusinesses(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list businesses: %w", err)
	}
	return list, total, nil
}

func (s *BusinessService) merge(b *models.Business, req UpdateBusinessRequest) {
	if req.Name != nil {
		b.Name = cleanText(*req.Name)
	}
	if req.Category != nil {
		b.Category = s.normalizer.categories.Canonicalize(*req.Category)
	}
	if req.Phone != nil {
		b.Phone = normalizePhone(*req.Phone)
	}
	if req.WhatsApp != nil {
		b.WhatsApp = normalizePhone(*req.WhatsApp)
	}
	if req.Email != nil {
		b.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Address != nil {
		b.Address = cleanText(*req.Address)
	}
	if req.City != nil {
		b.City = cleanText(*req.City)
	}
	if req.Location != nil {
		lat, lng := req.Location.Lat, req.Location.Lng
		b.Latitude = &lat
		b.Longitude = &lng
	}
	if req.Description != nil {
		b.Description = strings.TrimSpace(*req.Description)
	}
	if req.Schedule != nil {
		schedule := models.Schedule{}
		for day, h := range req.Schedule {
			schedule[day] = lifecycle.DayHours{Open: h.Open, From: strings.TrimSpace(h.From), To: strings.TrimSpace(h.To)}
		}
		b.Schedule = schedule
	}
	if req.LogoURL != nil {
		b.LogoURL = strings.TrimSpace(*req.LogoURL)
	}
	if req.CoverURL != nil {
		b.CoverURL = strings.TrimSpace(*req.CoverURL)
	}
	if req.Gallery != nil {
		b.Gallery = cleanList(req.Gallery)
	}
	if req.SocialLinks != nil {
		b.SocialLinks = cleanLinks(req.SocialLinks)
	}
	if req.Services != nil {
		b.Services = cleanList(req.Services)
	}
	if req.Products != nil {
		b.Products = cleanList(req.Products)
	}
}

// internal/repository/memory_store.go
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/utils"
)

// MemoryStore is an in-process Store used by tests and the memory driver.
// Records are copied on the way in and out.
type MemoryStore struct {
	mu           sync.RWMutex
	txMu         sync.Mutex
	businesses   map[uuid.UUID]models.Business
	applications map[uuid.UUID]models.Application
	events       []models.LifecycleEvent
	users        map[uuid.UUID]models.User
	auditLogs    []models.AuditLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		businesses:   make(map[uuid.UUID]models.Business),
		applications: make(map[uuid.UUID]models.Application),
		users:        make(map[uuid.UUID]models.User),
	}
}

// Tx runs fn and restores the previous contents if it fails. Transactions are
// serialised with each other but not with plain writes.
func (s *MemoryStore) Tx(ctx context.Context, fn func(Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	backup := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(backup)
		return err
	}
	return nil
}

type memorySnapshot struct {
	businesses   map[uuid.UUID]models.Business
	applications map[uuid.UUID]models.Application
	events       []models.LifecycleEvent
	users        map[uuid.UUID]models.User
}

func (s *MemoryStore) snapshot() memorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := memorySnapshot{
		businesses:   make(map[uuid.UUID]models.Business, len(s.businesses)),
		applications: make(map[uuid.UUID]models.Application, len(s.applications)),
		events:       append([]models.LifecycleEvent(nil), s.events...),
		users:        make(map[uuid.UUID]models.User, len(s.users)),
	}
	for k, v := range s.businesses {
		snap.businesses[k] = v
	}
	for k, v := range s.applications {
		snap.applications[k] = v
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.businesses = snap.businesses
	s.applications = snap.applications
	s.events = snap.events
	s.users = snap.users
}

func (s *MemoryStore) CreateBusiness(ctx context.Context, b *models.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	s.businesses[b.ID] = cloneBusiness(*b)
	return nil
}

func (s *MemoryStore) SaveBusiness(ctx context.Context, b *models.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.businesses[b.ID]
	if ok && existing.DeletedAt.Valid {
		return ErrNotFound
	}
	b.UpdatedAt = time.Now()
	s.businesses[b.ID] = cloneBusiness(*b)
	return nil
}

func (s *MemoryStore) GetBusiness(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.businesses[id]
	if !ok || b.DeletedAt.Valid {
		return nil, ErrNotFound
	}
	clone := cloneBusiness(b)
	return &clone, nil
}

func (s *MemoryStore) GetBusinessUnscoped(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.businesses[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := cloneBusiness(b)
	return &clone, nil
}

func (s *MemoryStore) FindBusinessByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Business, error) {
	owned, _ := s.ListBusinessesByOwner(ctx, ownerID)
	if len(owned) == 0 {
		return nil, ErrNotFound
	}
	// ListBusinessesByOwner is newest first.
	oldest := owned[len(owned)-1]
	return &oldest, nil
}

func (s *MemoryStore) ListBusinessesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []models.Business
	for _, b := range s.businesses {
		if b.OwnerID == ownerID && !b.DeletedAt.Valid {
			owned = append(owned, cloneBusiness(b))
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned, nil
}

func (s *MemoryStore) ListBusinesses(ctx context.Context, filter BusinessFilter, params utils.PaginationParams) ([]models.Business, int64, error) {
	s.mu.RLock()
	matched := make([]models.Business, 0)
	for _, b := range s.businesses {
		b := b
		if filter.Matches(&b) {
			matched = append(matched, cloneBusiness(b))
		}
	}
	s.mu.RUnlock()

	sortBusinesses(matched, params)
	total := int64(len(matched))

	if params.Limit > 0 {
		page := params.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * params.Limit
		if start > len(matched) {
			start = len(matched)
		}
		end := start + params.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (s *MemoryStore) CountBusinesses(ctx context.Context, filter BusinessFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, b := range s.businesses {
		b := b
		if filter.Matches(&b) {
			total++
		}
	}
	return total, nil
}

func (s *MemoryStore) ListBusinessIDs(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	all := make([]models.Business, 0, len(s.businesses))
	for _, b := range s.businesses {
		if !b.DeletedAt.Valid {
			all = append(all, b)
		}
	}
	s.mu.RUnlock()

	sortBusinesses(all, utils.PaginationParams{Sort: "created_at", Order: "asc"})
	ids := make([]uuid.UUID, len(all))
	for i, b := range all {
		ids[i] = b.ID
	}
	return ids, nil
}

func (s *MemoryStore) AppendEvent(ctx context.Context, e *models.LifecycleEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.events = append(s.events, *e)
	return nil
}

func (s *MemoryStore) ListEvents(ctx context.Context, businessID uuid.UUID) ([]models.LifecycleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []models.LifecycleEvent
	for _, e := range s.events {
		if e.BusinessID == businessID {
			events = append(events, e)
		}
	}
	return events, nil
}

func (s *MemoryStore) GetApplication(ctx context.Context, ownerID uuid.UUID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	return &app, nil
}

func (s *MemoryStore) SaveApplication(ctx context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.applications[app.OwnerID]; ok {
		app.CreatedAt = existing.CreatedAt
	} else if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	s.applications[app.OwnerID] = *app
	return nil
}

func (s *MemoryStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]models.Application, 0, len(s.applications))
	for _, app := range s.applications {
		apps = append(apps, app)
	}
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].CreatedAt.Before(apps[j].CreatedAt)
	})
	return apps, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = strings.ToLower(u.Email)
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) SaveUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.UpdatedAt = time.Now()
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	log.CreatedAt = time.Now()
	s.auditLogs = append(s.auditLogs, *log)
	return nil
}

// AuditLogs returns the recorded audit entries.
func (s *MemoryStore) AuditLogs() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditLog(nil), s.auditLogs...)
}

func sortBusinesses(list []models.Business, params utils.PaginationParams) {
	field := params.Sort
	valid := false
	for _, f := range SortFields {
		if f == field {
			valid = true
			break
		}
	}
	if !valid {
		field = "created_at"
	}
	desc := params.Order != "asc"

	less := func(a, b *models.Business) bool {
		switch field {
		case "name":
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case "completion_percent":
			return a.CompletionPercent < b.CompletionPercent
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "submitted_for_review_at":
			return timeBefore(a.SubmittedForReviewAt, b.SubmittedForReviewAt)
		case "published_at":
			return timeBefore(a.PublishedAt, b.PublishedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(&list[j], &list[i])
		}
		return less(&list[i], &list[j])
	})
}

func timeBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	default:
		return a.Before(*b)
	}
}

func cloneBusiness(b models.Business) models.Business {
	b.Gallery = cloneStrings(b.Gallery)
	b.Services = cloneStrings(b.Services)
	b.Products = cloneStrings(b.Products)
	b.MissingFields = cloneStrings(b.MissingFields)
	b.RequestedFields = cloneStrings(b.RequestedFields)
	if b.Schedule != nil {
		schedule := make(models.Schedule, len(b.Schedule))
		for k, v := range b.Schedule {
			schedule[k] = v
		}
		b.Schedule = schedule
	}
	if b.SocialLinks != nil {
		links := make(models.StringMap, len(b.SocialLinks))
		for k, v := range b.SocialLinks {
			links[k] = v
		}
		b.SocialLinks = links
	}
	return b
}

func cloneStrings[S ~[]string](in S) S {
	if in == nil {
		return nil
	}
	return append(S{}, in...)
}

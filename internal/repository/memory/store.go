// Package memory provides process-local repository implementations used when
// no Postgres DSN is configured and by tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/travel-desk/itinerary-service/internal/domain"
	"github.com/travel-desk/itinerary-service/internal/repository"
)

// Store holds every table behind one mutex.
type Store struct {
	mu          sync.Mutex
	txMu        sync.Mutex
	now         func() time.Time
	identities  map[int64]*domain.Identity
	employees   map[int64]*domain.Employee
	itineraries map[int64]*domain.Itinerary
	nextID      map[string]int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:         time.Now,
		identities:  make(map[int64]*domain.Identity),
		employees:   make(map[int64]*domain.Employee),
		itineraries: make(map[int64]*domain.Itinerary),
		nextID:      make(map[string]int64),
	}
}

// WithClock overrides the timestamp source; used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Identities returns the identity repository view.
func (s *Store) Identities() repository.IdentityRepository { return identityRepo{s} }

// Employees returns the employee repository view.
func (s *Store) Employees() repository.EmployeeRepository { return employeeRepo{s} }

// Itineraries returns the itinerary repository view.
func (s *Store) Itineraries() repository.ItineraryRepository { return itineraryRepo{s} }

// TxRunner serialises units of work, mirroring row locks in Postgres.
func (s *Store) TxRunner() repository.TxRunner { return txRunner{s} }

func (s *Store) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

type txRunner struct{ s *Store }

func (t txRunner) RunItinerary(_ context.Context, fn func(repo repository.ItineraryRepository) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	return fn(itineraryRepo{t.s})
}

// ── identities ──

type identityRepo struct{ s *Store }

func (r identityRepo) Create(_ context.Context, identity *domain.Identity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.identities {
		if existing.Username == identity.Username {
			return repository.ErrConflict
		}
	}
	now := r.s.now()
	identity.ID = r.s.id("identities")
	identity.CreatedAt = now
	identity.UpdatedAt = now
	stored := *identity
	r.s.identities[identity.ID] = &stored
	return nil
}

func (r identityRepo) GetByID(_ context.Context, id int64) (*domain.Identity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if identity, ok := r.s.identities[id]; ok {
		copied := *identity
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r identityRepo) GetByUsername(_ context.Context, username string) (*domain.Identity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, identity := range r.s.identities {
		if identity.Username == username {
			copied := *identity
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r identityRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// SetActive flips the active flag; administrative helper for tests and seeding.
func (s *Store) SetActive(id int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if identity, ok := s.identities[id]; ok {
		identity.IsActive = active
	}
}

// ── employees ──

type employeeRepo struct{ s *Store }

func (r employeeRepo) Create(_ context.Context, employee *domain.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.employees {
		if existing.EmployeeID == employee.EmployeeID {
			return repository.ErrConflict
		}
		if employee.UserID != nil && existing.UserID != nil && *existing.UserID == *employee.UserID {
			return repository.ErrConflict
		}
	}
	employee.ID = r.s.id("employees")
	stored := *employee
	r.s.employees[employee.ID] = &stored
	return nil
}

func (r employeeRepo) GetByUserID(_ context.Context, userID int64) (*domain.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, employee := range r.s.employees {
		if employee.UserID != nil && *employee.UserID == userID {
			copied := *employee
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r employeeRepo) GetByEmployeeID(_ context.Context, employeeID string) (*domain.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, employee := range r.s.employees {
		if employee.EmployeeID == employeeID {
			copied := *employee
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r employeeRepo) List(_ context.Context) ([]domain.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]domain.Employee, 0, len(r.s.employees))
	for _, employee := range r.s.employees {
		result = append(result, *employee)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r employeeRepo) LinkUser(_ context.Context, id, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	employee, ok := r.s.employees[id]
	if !ok {
		return pgx.ErrNoRows
	}
	for otherID, other := range r.s.employees {
		if otherID != id && other.UserID != nil && *other.UserID == userID {
			return repository.ErrConflict
		}
	}
	employee.UserID = &userID
	return nil
}

// ── itineraries ──

type itineraryRepo struct{ s *Store }

func (r itineraryRepo) Create(_ context.Context, itinerary *domain.Itinerary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	itinerary.ID = r.s.id("itineraries")
	itinerary.CreatedAt = now
	itinerary.UpdatedAt = now
	stored := *itinerary
	stored.Owner, stored.Employee = nil, nil
	r.s.itineraries[itinerary.ID] = &stored
	return nil
}

func (r itineraryRepo) Update(_ context.Context, itinerary *domain.Itinerary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.itineraries[itinerary.ID]
	if !ok || stored.UserID != itinerary.UserID {
		return pgx.ErrNoRows
	}
	stored.FromCity = itinerary.FromCity
	stored.ToCity = itinerary.ToCity
	stored.StartDate = itinerary.StartDate
	stored.EndDate = itinerary.EndDate
	stored.Status = itinerary.Status
	stored.Type = itinerary.Type
	stored.Mode = itinerary.Mode
	stored.Purpose = itinerary.Purpose
	stored.UpdatedAt = r.s.now()
	itinerary.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r itineraryRepo) GetForOwner(_ context.Context, id, ownerID int64) (*domain.Itinerary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.itineraries[id]
	if !ok || stored.UserID != ownerID {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r itineraryRepo) LockForOwner(ctx context.Context, id, ownerID int64) (*domain.Itinerary, error) {
	return r.GetForOwner(ctx, id, ownerID)
}

func (r itineraryRepo) ListByOwner(_ context.Context, ownerID int64, limit, offset int) ([]domain.Itinerary, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var owned []domain.Itinerary
	for _, stored := range r.s.itineraries {
		if stored.UserID == ownerID {
			owned = append(owned, *stored)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		a, b := owned[i], owned[j]
		if !a.RequestDate.Equal(b.RequestDate) {
			return a.RequestDate.After(b.RequestDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	total := len(owned)
	if offset >= total {
		return []domain.Itinerary{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

func (r itineraryRepo) DeleteForOwner(_ context.Context, id, ownerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.itineraries[id]
	if !ok || stored.UserID != ownerID {
		return pgx.ErrNoRows
	}
	delete(r.s.itineraries, id)
	return nil
}

package db

import (
	"context"
	"sync"

	"github.com/unipool/unipool-backend/internal/models"
)

// MemoryRideStore keeps rides in a map guarded by a mutex. It backs tests
// and database-less development runs, and honors the same revision
// discipline as the Mongo store.
type MemoryRideStore struct {
	mu    sync.RWMutex
	rides map[string]models.Ride
}

// NewMemoryRideStore creates an empty in-memory ride store.
func NewMemoryRideStore() *MemoryRideStore {
	return &MemoryRideStore{rides: make(map[string]models.Ride)}
}

// copyRide deep-copies the roster so callers never alias stored state.
func copyRide(r models.Ride) models.Ride {
	out := r
	out.Passengers = make([]models.RidePassenger, len(r.Passengers))
	copy(out.Passengers, r.Passengers)
	if r.RequestedBy != nil {
		rb := *r.RequestedBy
		out.RequestedBy = &rb
	}
	return out
}

func (s *MemoryRideStore) InsertRide(ctx context.Context, ride models.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rides[ride.ID]; exists {
		return ErrDuplicate
	}
	s.rides[ride.ID] = copyRide(ride)
	return nil
}

func (s *MemoryRideStore) FindRideByID(ctx context.Context, id string) (*models.Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ride, exists := s.rides[id]
	if !exists {
		return nil, ErrNotFound
	}
	out := copyRide(ride)
	return &out, nil
}

func (s *MemoryRideStore) FindRides(ctx context.Context) ([]models.Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rides := make([]models.Ride, 0, len(s.rides))
	for _, ride := range s.rides {
		rides = append(rides, copyRide(ride))
	}
	return rides, nil
}

// UpdateRevisioned commits the ride only if the stored revision still
// matches the one the caller read, then bumps it.
func (s *MemoryRideStore) UpdateRevisioned(ctx context.Context, ride models.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.rides[ride.ID]
	if !exists {
		return ErrRevisionConflict
	}
	if stored.Revision != ride.Revision {
		return ErrRevisionConflict
	}
	ride.Revision++
	s.rides[ride.ID] = copyRide(ride)
	return nil
}

func (s *MemoryRideStore) DeleteRide(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rides[id]; !exists {
		return ErrNotFound
	}
	delete(s.rides, id)
	return nil
}

// MemoryUserStore keeps users in a map guarded by a mutex.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]models.User)}
}

func (s *MemoryUserStore) InsertUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return ErrDuplicate
	}
	s.users[user.ID] = user
	return nil
}

func (s *MemoryUserStore) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[phone]
	if !exists {
		return nil, ErrNotFound
	}
	out := user
	return &out, nil
}

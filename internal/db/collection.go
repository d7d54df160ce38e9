package db

import (
	"context"
	"errors"

	"github.com/unipool/unipool-backend/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the given id.
	ErrNotFound = errors.New("record not found")
	// ErrRevisionConflict is returned when a conditional update lost a
	// race: the stored revision no longer matches the one that was read.
	ErrRevisionConflict = errors.New("revision conflict")
	// ErrDuplicate is returned when inserting a record whose id is taken.
	ErrDuplicate = errors.New("duplicate record")
)

// RideStore defines the persistence boundary for the ride collection.
// UpdateRevisioned is the only write path for existing rides: it matches
// on id plus the revision the caller read and increments the revision,
// so concurrent read-modify-write cycles detect each other.
type RideStore interface {
	InsertRide(ctx context.Context, ride models.Ride) error
	FindRideByID(ctx context.Context, id string) (*models.Ride, error)
	FindRides(ctx context.Context) ([]models.Ride, error)
	UpdateRevisioned(ctx context.Context, ride models.Ride) error
	DeleteRide(ctx context.Context, id string) error
}

// UserStore defines the persistence boundary for user records. Users are
// keyed by phone number.
type UserStore interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByPhone(ctx context.Context, phone string) (*models.User, error)
}

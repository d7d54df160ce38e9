package ride

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/unipool/unipool-backend/internal/db"
	"github.com/unipool/unipool-backend/internal/models"
)

var (
	// ErrValidation covers malformed or out-of-range input, rejected
	// before any state change.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized covers actor role or ownership mismatches.
	ErrUnauthorized = errors.New("operation not allowed for this user")
	// ErrStateConflict covers operations invalid for the ride's current
	// status, and lost concurrent-update races.
	ErrStateConflict = errors.New("ride state conflict")
	// ErrNotFound covers unknown ride ids.
	ErrNotFound = errors.New("ride not found")
)

// maxUpdateAttempts bounds the read-modify-write retry loop on revision
// conflicts before the failure is surfaced to the caller.
const maxUpdateAttempts = 3

// maxRecurrenceWeeks caps how far ahead a weekly series may be posted.
const maxRecurrenceWeeks = 26

// Engine owns the ride lifecycle rules: creation, status transitions,
// seat allocation and release, and edits. All mutations go through a
// revision-checked store update, so concurrent actors (two passengers
// racing for the last seat, a driver accepting while the requester
// cancels) resolve to exactly one winner per write.
type Engine struct {
	rides db.RideStore
}

// NewEngine creates an engine over the given ride store.
func NewEngine(rides db.RideStore) *Engine {
	return &Engine{rides: rides}
}

// mutate runs one guarded read-modify-write cycle against the ride,
// retrying a bounded number of times when another writer got there first.
// Terminal rides reject every mutation. The seat invariant
// seatsAvailable = totalSeats - len(passengers) is restored before commit.
func (e *Engine) mutate(ctx context.Context, rideID string, apply func(*models.Ride) error) error {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		ride, err := e.rides.FindRideByID(ctx, rideID)
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, rideID)
		}
		if err != nil {
			return err
		}
		if ride.Status.IsTerminal() {
			return fmt.Errorf("%w: ride is %s", ErrStateConflict, ride.Status)
		}
		if err := apply(ride); err != nil {
			return err
		}
		ride.RecomputeSeats()
		ride.UpdatedAt = time.Now()

		err = e.rides.UpdateRevisioned(ctx, *ride)
		if err == nil {
			return nil
		}
		if !errors.Is(err, db.ErrRevisionConflict) {
			return err
		}
	}
	return fmt.Errorf("%w: ride %s was updated concurrently", ErrStateConflict, rideID)
}

func validateStops(origin, destination string) error {
	if !models.IsValidLocation(origin) {
		return fmt.Errorf("%w: unknown origin %q", ErrValidation, origin)
	}
	if !models.IsValidLocation(destination) {
		return fmt.Errorf("%w: unknown destination %q", ErrValidation, destination)
	}
	if origin == destination {
		return fmt.Errorf("%w: origin and destination must differ", ErrValidation)
	}
	return nil
}

func validateRoute(origin, destination string, departure time.Time) error {
	if err := validateStops(origin, destination); err != nil {
		return err
	}
	if departure.Before(time.Now()) {
		return fmt.Errorf("%w: departure time is in the past", ErrValidation)
	}
	return nil
}

// RequestRide creates a Requested ride on behalf of a passenger. No driver
// is assigned and no seat is taken until a driver accepts.
func (e *Engine) RequestRide(ctx context.Context, actor *models.User, req models.RequestRideRequest) (*models.Ride, error) {
	if actor.Role != models.RolePassenger {
		return nil, fmt.Errorf("%w: only passengers can request rides", ErrUnauthorized)
	}
	if err := validateRoute(req.Origin, req.Destination, req.DepartureTime); err != nil {
		return nil, err
	}

	requester := actor.AsPassenger()
	now := time.Now()
	ride := models.Ride{
		ID:            primitive.NewObjectID().Hex(),
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		TotalSeats:    models.DefaultTotalSeats,
		Status:        models.StatusRequested,
		Passengers:    []models.RidePassenger{},
		RequestedBy:   &requester,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	ride.RecomputeSeats()

	if err := e.rides.InsertRide(ctx, ride); err != nil {
		return nil, err
	}
	return &ride, nil
}

// PostRide creates one Scheduled ride owned by the driver, or a weekly
// series of them when req.Weeks > 1. Instances of a series share a
// recurrence id.
func (e *Engine) PostRide(ctx context.Context, actor *models.User, req models.PostRideRequest) ([]models.Ride, error) {
	if actor.Role != models.RoleDriver {
		return nil, fmt.Errorf("%w: only drivers can post rides", ErrUnauthorized)
	}
	if err := validateRoute(req.Origin, req.Destination, req.DepartureTime); err != nil {
		return nil, err
	}
	if req.TotalSeats < models.MinTotalSeats || req.TotalSeats > models.MaxTotalSeats {
		return nil, fmt.Errorf("%w: total seats must be between %d and %d",
			ErrValidation, models.MinTotalSeats, models.MaxTotalSeats)
	}
	weeks := req.Weeks
	if weeks < 1 {
		weeks = 1
	}
	if weeks > maxRecurrenceWeeks {
		return nil, fmt.Errorf("%w: at most %d weekly instances", ErrValidation, maxRecurrenceWeeks)
	}

	recurrenceID := ""
	if weeks > 1 {
		recurrenceID = primitive.NewObjectID().Hex()
	}

	now := time.Now()
	rides := make([]models.Ride, 0, weeks)
	for i := 0; i < weeks; i++ {
		ride := models.Ride{
			ID:                primitive.NewObjectID().Hex(),
			Origin:            req.Origin,
			Destination:       req.Destination,
			DepartureTime:     req.DepartureTime.AddDate(0, 0, 7*i),
			TotalSeats:        req.TotalSeats,
			Status:            models.StatusScheduled,
			DriverID:          actor.ID,
			DriverName:        actor.Name,
			DriverPhoneNumber: actor.PhoneNumber,
			Passengers:        []models.RidePassenger{},
			RecurrenceID:      recurrenceID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		ride.RecomputeSeats()
		if err := e.rides.InsertRide(ctx, ride); err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, nil
}

// ReserveSeat books one seat for the acting passenger. The decrement and
// the roster append commit together or not at all; under a race for the
// last seat exactly one caller succeeds.
func (e *Engine) ReserveSeat(ctx context.Context, actor *models.User, rideID string) error {
	if actor.Role != models.RolePassenger {
		return fmt.Errorf("%w: only passengers can reserve seats", ErrUnauthorized)
	}
	return e.mutate(ctx, rideID, func(r *models.Ride) error {
		if r.Status != models.StatusScheduled {
			return fmt.Errorf("%w: cannot reserve on a %s ride", ErrStateConflict, r.Status)
		}
		if r.HasPassenger(actor.ID) {
			return fmt.Errorf("%w: seat already reserved", ErrStateConflict)
		}
		if r.SeatsAvailable <= 0 {
			return fmt.Errorf("%w: no seats available", ErrStateConflict)
		}
		r.Passengers = append(r.Passengers, actor.AsPassenger())
		return nil
	})
}

// CancelReservation releases the acting passenger's seat. The ride status
// is left untouched.
func (e *Engine) CancelReservation(ctx context.Context, actor *models.User, rideID string) error {
	return e.mutate(ctx, rideID, func(r *models.Ride) error {
		for i, p := range r.Passengers {
			if p.UserID == actor.ID {
				r.Passengers = append(r.Passengers[:i], r.Passengers[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: no reservation held on this ride", ErrStateConflict)
	})
}

// AcceptRideRequest converts a Requested ride into a Scheduled one owned
// by the accepting driver, attaching the requester as the first passenger
// in the same write.
func (e *Engine) AcceptRideRequest(ctx context.Context, actor *models.User, rideID string) error {
	if actor.Role != models.RoleDriver {
		return fmt.Errorf("%w: only drivers can accept ride requests", ErrUnauthorized)
	}
	return e.mutate(ctx, rideID, func(r *models.Ride) error {
		if r.Status != models.StatusRequested {
			return fmt.Errorf("%w: ride is %s, not %s", ErrStateConflict, r.Status, models.StatusRequested)
		}
		if r.RequestedBy == nil {
			return fmt.Errorf("%w: ride has no requester", ErrStateConflict)
		}
		r.Status = models.StatusScheduled
		r.DriverID = actor.ID
		r.DriverName = actor.Name
		r.DriverPhoneNumber = actor.PhoneNumber
		r.Passengers = []models.RidePassenger{*r.RequestedBy}
		return nil
	})
}

// applyProgress enforces the progress contract: only while On Route, in
// [0,100], never decreasing. Reaching 100 moves the ride to Destination
// Reached on its own.
func applyProgress(r *models.Ride, progress int) error {
	if r.Status != models.StatusOnRoute {
		return fmt.Errorf("%w: progress only applies while %s", ErrStateConflict, models.StatusOnRoute)
	}
	if progress < 0 || progress > models.MaxProgress {
		return fmt.Errorf("%w: progress must be between 0 and %d", ErrValidation, models.MaxProgress)
	}
	if progress < r.Progress {
		return fmt.Errorf("%w: progress cannot decrease (%d -> %d)", ErrValidation, r.Progress, progress)
	}
	r.Progress = progress
	if progress == models.MaxProgress {
		r.Status = models.StatusDestinationReached
	}
	return nil
}

// UpdateRideStatus applies a driver-initiated status transition, guarded
// by the transition table and ride ownership. An optional progress value
// is applied after the transition.
func (e *Engine) UpdateRideStatus(ctx context.Context, actor *models.User, rideID string, req models.StatusUpdateRequest) error {
	if actor.Role != models.RoleDriver {
		return fmt.Errorf("%w: only drivers can update ride status", ErrUnauthorized)
	}
	return e.mutate(ctx, rideID, func(r *models.Ride) error {
		if !r.IsOwnedBy(actor.ID) {
			return fmt.Errorf("%w: ride belongs to another driver", ErrUnauthorized)
		}
		if !r.CanTransitionTo(req.Status) {
			return fmt.Errorf("%w: cannot move from %s to %s", ErrStateConflict, r.Status, req.Status)
		}
		r.Status = req.Status
		if req.Progress != nil {
			return applyProgress(r, *req.Progress)
		}
		return nil
	})
}

// ApplyProgress feeds one telemetry progress tick into an On Route ride.
// It runs on the driver's behalf, so there is no actor check; the tick
// source (broker topic) is trusted the way the driver's device is.
func (e *Engine) ApplyProgress(ctx context.Context, rideID string, progress int) error {
	return e.mutate(ctx, rideID, func(r *models.Ride) error {
		return applyProgress(r, progress)
	})
}

// UpdateRideDetails edits route, departure time or capacity. Only the
// owning driver may edit, and capacity can never drop below the current
// roster size.
func (e *Engine) UpdateRideDetails(ctx context.Context, actor *models.User, rideID string, patch models.RidePatch) error {
	if actor.Role != models.RoleDriver {
		return fmt.Errorf("%w: only drivers can edit rides", ErrUnauthorized)
	}
	return e.mutate(ctx, rideID, func(r *models.Ride) error {
		if !r.IsOwnedBy(actor.ID) {
			return fmt.Errorf("%w: ride belongs to another driver", ErrUnauthorized)
		}
		origin, destination, departure := r.Origin, r.Destination, r.DepartureTime
		if patch.Origin != nil {
			origin = *patch.Origin
		}
		if patch.Destination != nil {
			destination = *patch.Destination
		}
		if err := validateStops(origin, destination); err != nil {
			return err
		}
		// Departure freshness is checked at posting time only; an edit that
		// leaves it untouched must not fail because the stored time slipped
		// into the past.
		if patch.DepartureTime != nil {
			departure = *patch.DepartureTime
			if departure.Before(time.Now()) {
				return fmt.Errorf("%w: departure time is in the past", ErrValidation)
			}
		}
		if patch.TotalSeats != nil {
			seats := *patch.TotalSeats
			if seats < models.MinTotalSeats || seats > models.MaxTotalSeats {
				return fmt.Errorf("%w: total seats must be between %d and %d",
					ErrValidation, models.MinTotalSeats, models.MaxTotalSeats)
			}
			if seats < len(r.Passengers) {
				return fmt.Errorf("%w: %d passengers already booked", ErrValidation, len(r.Passengers))
			}
			r.TotalSeats = seats
		}
		r.Origin = origin
		r.Destination = destination
		r.DepartureTime = departure
		return nil
	})
}

// DeleteRide removes a ride record entirely. Rides holding passengers are
// never deleted.
func (e *Engine) DeleteRide(ctx context.Context, rideID string) error {
	ride, err := e.rides.FindRideByID(ctx, rideID)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, rideID)
	}
	if err != nil {
		return err
	}
	if len(ride.Passengers) > 0 {
		return fmt.Errorf("%w: ride still has %d passengers", ErrStateConflict, len(ride.Passengers))
	}
	if err := e.rides.DeleteRide(ctx, rideID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, rideID)
		}
		return err
	}
	return nil
}

// DeleteFutureRecurringInstances deletes every future, passenger-free
// instance of the seed ride's series, counting and skipping the instances
// that still hold passengers. A one-off ride is its own series of one.
func (e *Engine) DeleteFutureRecurringInstances(ctx context.Context, seedRideID string) (models.RecurringDeleteResult, error) {
	var result models.RecurringDeleteResult

	seed, err := e.rides.FindRideByID(ctx, seedRideID)
	if errors.Is(err, db.ErrNotFound) {
		return result, fmt.Errorf("%w: %s", ErrNotFound, seedRideID)
	}
	if err != nil {
		return result, err
	}

	siblings := []models.Ride{*seed}
	if seed.RecurrenceID != "" {
		all, err := e.rides.FindRides(ctx)
		if err != nil {
			return result, err
		}
		siblings = siblings[:0]
		for _, r := range all {
			if r.RecurrenceID == seed.RecurrenceID {
				siblings = append(siblings, r)
			}
		}
	}

	now := time.Now()
	for _, r := range siblings {
		if r.DepartureTime.Before(now) {
			continue
		}
		if len(r.Passengers) > 0 {
			result.SkippedCount++
			continue
		}
		if err := e.rides.DeleteRide(ctx, r.ID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				continue
			}
			return result, err
		}
		result.DeletedCount++
	}
	return result, nil
}

// GetRideByID fetches a single ride.
func (e *Engine) GetRideByID(ctx context.Context, rideID string) (*models.Ride, error) {
	ride, err := e.rides.FindRideByID(ctx, rideID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rideID)
	}
	return ride, err
}

// Snapshot returns the full ride collection for derived-view computation.
func (e *Engine) Snapshot(ctx context.Context) ([]models.Ride, error) {
	return e.rides.FindRides(ctx)
}

package models

import (
	"time"
)

// RideStatus represents the lifecycle state of a ride.
type RideStatus string

const (
	StatusRequested          RideStatus = "Requested"
	StatusScheduled          RideStatus = "Scheduled"
	StatusAboutToDepart      RideStatus = "About to Depart"
	StatusOnRoute            RideStatus = "On Route"
	StatusArriving           RideStatus = "Arriving"
	StatusAtSource           RideStatus = "At Source"
	StatusWaiting            RideStatus = "Waiting"
	StatusDestinationReached RideStatus = "Destination Reached"
	StatusCompleted          RideStatus = "Completed"
	StatusCancelled          RideStatus = "Cancelled"
)

// Seat capacity bounds. Passenger-requested rides get DefaultTotalSeats
// until the accepting driver edits the ride.
const (
	MinTotalSeats     = 1
	MaxTotalSeats     = 10
	DefaultTotalSeats = 4
	MaxProgress       = 100
)

// validTransitions defines which status changes are allowed from each state.
// Terminal states (Completed, Cancelled) have empty slices. On Route lists
// itself so progress ticks can be applied without a status change.
var validTransitions = map[RideStatus][]RideStatus{
	StatusRequested:          {StatusScheduled, StatusCancelled},
	StatusScheduled:          {StatusAboutToDepart, StatusOnRoute, StatusCancelled},
	StatusAboutToDepart:      {StatusAtSource, StatusWaiting, StatusArriving, StatusOnRoute, StatusCancelled},
	StatusAtSource:           {StatusWaiting, StatusOnRoute, StatusCancelled},
	StatusWaiting:            {StatusOnRoute, StatusCancelled},
	StatusArriving:           {StatusAtSource, StatusWaiting, StatusOnRoute, StatusDestinationReached, StatusCancelled},
	StatusOnRoute:            {StatusOnRoute, StatusArriving, StatusDestinationReached, StatusCompleted, StatusCancelled},
	StatusDestinationReached: {StatusCompleted, StatusCancelled},
	StatusCompleted:          {},
	StatusCancelled:          {},
}

// IsTerminal reports whether no further mutation is permitted.
func (s RideStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsActive reports whether the ride is currently underway, as opposed to
// scheduled-but-not-started or finished.
func (s RideStatus) IsActive() bool {
	switch s {
	case StatusAboutToDepart, StatusOnRoute, StatusArriving, StatusAtSource, StatusWaiting:
		return true
	default:
		return false
	}
}

// RidePassenger is the roster snapshot of a passenger, taken at
// reservation time. It is not live-updated from the user profile.
type RidePassenger struct {
	UserID      string `bson:"user_id" json:"user_id"`
	Name        string `bson:"name" json:"name"`
	PhoneNumber string `bson:"phone_number" json:"phone_number"`
}

// Ride is the central aggregate: one scheduled or requested trip between
// two stops, with a capacity and a passenger roster. Revision backs the
// store's conditional updates; every committed mutation increments it.
type Ride struct {
	ID                string          `bson:"_id" json:"id"`
	Origin            string          `bson:"origin" json:"origin"`
	Destination       string          `bson:"destination" json:"destination"`
	DepartureTime     time.Time       `bson:"departure_time" json:"departure_time"`
	TotalSeats        int             `bson:"total_seats" json:"total_seats"`
	SeatsAvailable    int             `bson:"seats_available" json:"seats_available"`
	Status            RideStatus      `bson:"status" json:"status"`
	DriverID          string          `bson:"driver_id,omitempty" json:"driver_id,omitempty"`
	DriverName        string          `bson:"driver_name,omitempty" json:"driver_name,omitempty"`
	DriverPhoneNumber string          `bson:"driver_phone_number,omitempty" json:"driver_phone_number,omitempty"`
	Passengers        []RidePassenger `bson:"passengers" json:"passengers"`
	Progress          int             `bson:"progress" json:"progress"`
	RequestedBy       *RidePassenger  `bson:"requested_by,omitempty" json:"requested_by,omitempty"`
	RecurrenceID      string          `bson:"recurrence_id,omitempty" json:"recurrence_id,omitempty"`
	Revision          int64           `bson:"revision" json:"-"`
	CreatedAt         time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `bson:"updated_at" json:"updated_at"`
}

// CanTransitionTo checks if moving to newStatus is a valid state change.
func (r *Ride) CanTransitionTo(newStatus RideStatus) bool {
	allowed, exists := validTransitions[r.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// IsOwnedBy reports whether userID is the assigned driver.
func (r *Ride) IsOwnedBy(userID string) bool {
	return r.DriverID != "" && r.DriverID == userID
}

// HasPassenger reports whether userID holds a seat on this ride.
func (r *Ride) HasPassenger(userID string) bool {
	for _, p := range r.Passengers {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// RecomputeSeats restores the seat invariant
// seatsAvailable = totalSeats - len(passengers).
func (r *Ride) RecomputeSeats() {
	r.SeatsAvailable = r.TotalSeats - len(r.Passengers)
}

// PostRideRequest is a driver's offer of a new ride. Weeks > 1 posts a
// weekly recurring series sharing one recurrence id.
type PostRideRequest struct {
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	TotalSeats    int       `json:"total_seats"`
	Weeks         int       `json:"weeks,omitempty"`
}

// RequestRideRequest is a passenger's request for a ride with no driver yet.
type RequestRideRequest struct {
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
}

// StatusUpdateRequest carries a driver-initiated status transition.
// Progress is optional and only meaningful while On Route.
type StatusUpdateRequest struct {
	Status   RideStatus `json:"status"`
	Progress *int       `json:"progress,omitempty"`
}

// RidePatch is a driver-owner edit of ride details. Nil fields are left
// unchanged.
type RidePatch struct {
	Origin        *string    `json:"origin,omitempty"`
	Destination   *string    `json:"destination,omitempty"`
	DepartureTime *time.Time `json:"departure_time,omitempty"`
	TotalSeats    *int       `json:"total_seats,omitempty"`
}

// RecurringDeleteResult reports the outcome of deleting the future
// instances of a recurring series.
type RecurringDeleteResult struct {
	DeletedCount int `json:"deleted_count"`
	SkippedCount int `json:"skipped_count"`
}

// Capabilities tells the caller which actions the viewing user may take on
// a ride, so the UI never re-implements the engine's guards.
type Capabilities struct {
	CanReserveSeat       bool `json:"can_reserve_seat"`
	CanCancelReservation bool `json:"can_cancel_reservation"`
	CanAcceptRequest     bool `json:"can_accept_request"`
	CanStartRide         bool `json:"can_start_ride"`
	CanCompleteRide      bool `json:"can_complete_ride"`
	CanCancelRide        bool `json:"can_cancel_ride"`
	CanEditRide          bool `json:"can_edit_ride"`
	CanDeleteRide        bool `json:"can_delete_ride"`
}

package models

import (
	"testing"
)

func TestRide_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     RideStatus
		to       RideStatus
		expected bool
	}{
		{"requested to scheduled", StatusRequested, StatusScheduled, true},
		{"requested to cancelled", StatusRequested, StatusCancelled, true},
		{"requested to on route", StatusRequested, StatusOnRoute, false},
		{"scheduled to on route", StatusScheduled, StatusOnRoute, true},
		{"scheduled to about to depart", StatusScheduled, StatusAboutToDepart, true},
		{"scheduled to completed", StatusScheduled, StatusCompleted, false},
		{"on route to on route", StatusOnRoute, StatusOnRoute, true},
		{"on route to destination reached", StatusOnRoute, StatusDestinationReached, true},
		{"on route to completed", StatusOnRoute, StatusCompleted, true},
		{"destination reached to completed", StatusDestinationReached, StatusCompleted, true},
		{"destination reached to on route", StatusDestinationReached, StatusOnRoute, false},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusScheduled, false},
		{"unknown status", RideStatus("Bogus"), StatusScheduled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Ride{Status: tt.from}
			if got := r.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestRideStatus_IsTerminal(t *testing.T) {
	terminal := []RideStatus{StatusCompleted, StatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("Expected %s to be terminal", s)
		}
	}

	nonTerminal := []RideStatus{StatusRequested, StatusScheduled, StatusOnRoute, StatusDestinationReached}
	for _, s := range nonTerminal {
		if s.IsTerminal() {
			t.Errorf("Expected %s to be non-terminal", s)
		}
	}
}

func TestRideStatus_IsActive(t *testing.T) {
	active := []RideStatus{StatusAboutToDepart, StatusOnRoute, StatusArriving, StatusAtSource, StatusWaiting}
	for _, s := range active {
		if !s.IsActive() {
			t.Errorf("Expected %s to be active", s)
		}
	}

	inactive := []RideStatus{StatusRequested, StatusScheduled, StatusDestinationReached, StatusCompleted, StatusCancelled}
	for _, s := range inactive {
		if s.IsActive() {
			t.Errorf("Expected %s to be inactive", s)
		}
	}
}

func TestRide_HasPassenger(t *testing.T) {
	r := &Ride{
		Passengers: []RidePassenger{
			{UserID: "+15550000001", Name: "A"},
			{UserID: "+15550000002", Name: "B"},
		},
	}

	if !r.HasPassenger("+15550000001") {
		t.Error("Expected +15550000001 to hold a seat")
	}
	if r.HasPassenger("+15550000003") {
		t.Error("Expected +15550000003 not to hold a seat")
	}
}

func TestRide_IsOwnedBy(t *testing.T) {
	r := &Ride{DriverID: "+15550000100"}
	if !r.IsOwnedBy("+15550000100") {
		t.Error("Expected driver to own the ride")
	}
	if r.IsOwnedBy("+15550000001") {
		t.Error("Expected non-driver not to own the ride")
	}

	unassigned := &Ride{}
	if unassigned.IsOwnedBy("") {
		t.Error("A ride without a driver is owned by nobody")
	}
}

func TestRide_RecomputeSeats(t *testing.T) {
	r := &Ride{
		TotalSeats: 4,
		Passengers: []RidePassenger{
			{UserID: "+15550000001"},
			{UserID: "+15550000002"},
		},
	}
	r.RecomputeSeats()
	if r.SeatsAvailable != 2 {
		t.Errorf("Expected 2 seats available, got %d", r.SeatsAvailable)
	}

	r.Passengers = nil
	r.RecomputeSeats()
	if r.SeatsAvailable != 4 {
		t.Errorf("Expected 4 seats available, got %d", r.SeatsAvailable)
	}
}

func TestIsValidLocation(t *testing.T) {
	if !IsValidLocation(LocationTransportRoad) {
		t.Errorf("Expected %q to be a valid stop", LocationTransportRoad)
	}
	if !IsValidLocation(LocationCollegeCampus) {
		t.Errorf("Expected %q to be a valid stop", LocationCollegeCampus)
	}
	if IsValidLocation("Airport") {
		t.Error("Expected unknown stop to be invalid")
	}
}

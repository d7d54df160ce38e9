package ride

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/unipool/unipool-backend/internal/models"
)

// The derived views are pure functions of (collection snapshot, viewer).
// They are recomputed on every call; the collection covers one fixed
// route, so there is nothing worth caching.

// participates reports whether the viewer is the assigned driver, holds a
// seat, or is the requester of the ride.
func participates(r *models.Ride, viewer *models.User) bool {
	if r.IsOwnedBy(viewer.ID) || r.HasPassenger(viewer.ID) {
		return true
	}
	return r.RequestedBy != nil && r.RequestedBy.UserID == viewer.ID
}

func sortByDeparture(rides []models.Ride, ascending bool) {
	sort.Slice(rides, func(i, j int) bool {
		if rides[i].DepartureTime.Equal(rides[j].DepartureTime) {
			return rides[i].ID < rides[j].ID
		}
		if ascending {
			return rides[i].DepartureTime.Before(rides[j].DepartureTime)
		}
		return rides[i].DepartureTime.After(rides[j].DepartureTime)
	})
}

// UpcomingForUser returns the viewer's non-terminal rides, soonest first.
func UpcomingForUser(rides []models.Ride, viewer *models.User) []models.Ride {
	out := []models.Ride{}
	for _, r := range rides {
		if !r.Status.IsTerminal() && participates(&r, viewer) {
			out = append(out, r)
		}
	}
	sortByDeparture(out, true)
	return out
}

// PastForUser returns the viewer's completed and cancelled rides, most
// recent departure first.
func PastForUser(rides []models.Ride, viewer *models.User) []models.Ride {
	out := []models.Ride{}
	for _, r := range rides {
		if r.Status.IsTerminal() && participates(&r, viewer) {
			out = append(out, r)
		}
	}
	sortByDeparture(out, false)
	return out
}

// PendingRequests returns every unaccepted passenger request, soonest
// first. Drivers browse this list to pick requests up.
func PendingRequests(rides []models.Ride) []models.Ride {
	out := []models.Ride{}
	for _, r := range rides {
		if r.Status == models.StatusRequested {
			out = append(out, r)
		}
	}
	sortByDeparture(out, true)
	return out
}

// CurrentRide resolves the viewer's single active ride, or nil. At most
// one active ride per user is an invariant; a multiplicity here means
// corrupted data, so it is logged and the soonest-departing match is
// returned to keep the caller working.
func CurrentRide(rides []models.Ride, viewer *models.User) *models.Ride {
	matches := []models.Ride{}
	for _, r := range rides {
		if r.Status.IsActive() && participates(&r, viewer) {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sortByDeparture(matches, true)
	if len(matches) > 1 {
		ids := make([]string, len(matches))
		for i, r := range matches {
			ids[i] = r.ID
		}
		log.WithFields(log.Fields{
			"user_id":  viewer.ID,
			"ride_ids": ids,
		}).Warn("invariant violated: user has multiple active rides")
	}
	return &matches[0]
}

// CapabilitiesFor computes which actions the viewer may take on the ride,
// mirroring the engine's own guards so the presentation layer never
// duplicates them.
func CapabilitiesFor(viewer *models.User, r *models.Ride) models.Capabilities {
	var c models.Capabilities
	if r.Status.IsTerminal() {
		return c
	}
	owner := r.IsOwnedBy(viewer.ID)
	if viewer.Role == models.RolePassenger {
		c.CanReserveSeat = r.Status == models.StatusScheduled &&
			!r.HasPassenger(viewer.ID) && r.SeatsAvailable > 0
		c.CanCancelReservation = r.HasPassenger(viewer.ID)
	}
	if viewer.Role == models.RoleDriver {
		c.CanAcceptRequest = r.Status == models.StatusRequested && r.RequestedBy != nil
		c.CanStartRide = owner && r.CanTransitionTo(models.StatusOnRoute)
		c.CanCompleteRide = owner && r.CanTransitionTo(models.StatusCompleted)
		c.CanCancelRide = owner
		c.CanEditRide = owner
	}
	c.CanDeleteRide = len(r.Passengers) == 0 && (owner ||
		(r.RequestedBy != nil && r.RequestedBy.UserID == viewer.ID))
	return c
}

// Store-backed conveniences for the HTTP layer.

func (e *Engine) UpcomingForUser(ctx context.Context, viewer *models.User) ([]models.Ride, error) {
	rides, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return UpcomingForUser(rides, viewer), nil
}

func (e *Engine) PastForUser(ctx context.Context, viewer *models.User) ([]models.Ride, error) {
	rides, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return PastForUser(rides, viewer), nil
}

func (e *Engine) PendingRequests(ctx context.Context) ([]models.Ride, error) {
	rides, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return PendingRequests(rides), nil
}

func (e *Engine) CurrentRide(ctx context.Context, viewer *models.User) (*models.Ride, error) {
	rides, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return CurrentRide(rides, viewer), nil
}

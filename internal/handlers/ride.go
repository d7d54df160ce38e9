package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/unipool/unipool-backend/internal/middleware"
	"github.com/unipool/unipool-backend/internal/models"
	"github.com/unipool/unipool-backend/internal/ride"
)

// RideHandler exposes the lifecycle engine's operations and derived views
// over HTTP. Routes are registered with method+path patterns, so method
// checks live in the mux.
type RideHandler struct {
	engine *ride.Engine
}

// NewRideHandler creates a new ride handler
func NewRideHandler(engine *ride.Engine) *RideHandler {
	return &RideHandler{engine: engine}
}

// actorFromContext rebuilds the acting user from the verified JWT claims.
func actorFromContext(r *http.Request) (*models.User, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return &models.User{
		ID:          claims.UserID,
		Name:        claims.Name,
		PhoneNumber: claims.PhoneNumber,
		Role:        claims.Role,
	}, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ride.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ride.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ride.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ride.ErrStateConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.WithError(err).Error("ride operation failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// Post creates a Scheduled ride (or weekly series) owned by the driver
func (h *RideHandler) Post(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var req models.PostRideRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	rides, err := h.engine.PostRide(r.Context(), actor, req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rides)
}

// Request creates a Requested ride on behalf of a passenger
func (h *RideHandler) Request(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var req models.RequestRideRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	created, err := h.engine.RequestRide(r.Context(), actor, req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get returns a single ride by id
func (h *RideHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.engine.GetRideByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// Reserve books a seat for the acting passenger
func (h *RideHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	if err := h.engine.ReserveSeat(r.Context(), actor, r.PathValue("id")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Seat reserved"})
}

// CancelReservation releases the acting passenger's seat
func (h *RideHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	if err := h.engine.CancelReservation(r.Context(), actor, r.PathValue("id")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reservation cancelled"})
}

// Accept converts a Requested ride into a Scheduled one owned by the driver
func (h *RideHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	if err := h.engine.AcceptRideRequest(r.Context(), actor, r.PathValue("id")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Ride request accepted"})
}

// UpdateStatus applies a driver-initiated status transition
func (h *RideHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var req models.StatusUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.engine.UpdateRideStatus(r.Context(), actor, r.PathValue("id"), req); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Status updated"})
}

// Patch edits ride details (owner only)
func (h *RideHandler) Patch(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var patch models.RidePatch
	if err := decodeBody(r, &patch); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.engine.UpdateRideDetails(r.Context(), actor, r.PathValue("id"), patch); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Ride updated"})
}

// Delete removes a passenger-free ride. Only the owning driver or the
// requester may delete, the same rule CapabilitiesFor advertises.
func (h *RideHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	found, err := h.engine.GetRideByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	isRequester := found.RequestedBy != nil && found.RequestedBy.UserID == actor.ID
	if !found.IsOwnedBy(actor.ID) && !isRequester {
		http.Error(w, "Only the ride owner or requester can delete it", http.StatusForbidden)
		return
	}
	if err := h.engine.DeleteRide(r.Context(), found.ID); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Ride deleted"})
}

// DeleteRecurring removes the future, passenger-free instances of a series
func (h *RideHandler) DeleteRecurring(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.DeleteFutureRecurringInstances(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Upcoming lists the viewer's non-terminal rides, soonest first
func (h *RideHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	rides, err := h.engine.UpcomingForUser(r.Context(), actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rides)
}

// Past lists the viewer's finished rides, most recent first
func (h *RideHandler) Past(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	rides, err := h.engine.PastForUser(r.Context(), actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rides)
}

// Pending lists unaccepted ride requests for drivers to browse
func (h *RideHandler) Pending(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	if actor.Role != models.RoleDriver {
		http.Error(w, "Only drivers can browse ride requests", http.StatusForbidden)
		return
	}
	rides, err := h.engine.PendingRequests(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rides)
}

// Current resolves the viewer's single active ride, if any
func (h *RideHandler) Current(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	current, err := h.engine.CurrentRide(r.Context(), actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if current == nil {
		http.Error(w, "No active ride", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

// Capabilities tells the viewer which actions they may take on a ride
func (h *RideHandler) Capabilities(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	found, err := h.engine.GetRideByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ride.CapabilitiesFor(actor, found))
}

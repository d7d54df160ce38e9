package models

import (
	"time"
)

// ProgressTick is one telemetry sample for a ride that is On Route. Ticks
// arrive over the broker from the driver's device (or the simulator), never
// from a wall-clock timer inside the engine.
type ProgressTick struct {
	RideID    string    `json:"ride_id"`
	Progress  int       `json:"progress"`
	Timestamp time.Time `json:"timestamp"`
}

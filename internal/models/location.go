package models

// The service runs a single fixed route, so stops form a closed set of
// two named locations.
const (
	LocationTransportRoad = "Main Transport Road"
	LocationCollegeCampus = "College Campus"
)

// Locations lists every valid stop.
var Locations = []string{LocationTransportRoad, LocationCollegeCampus}

// IsValidLocation checks if a stop name belongs to the fixed route.
func IsValidLocation(name string) bool {
	for _, l := range Locations {
		if l == name {
			return true
		}
	}
	return false
}

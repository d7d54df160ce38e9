package ride

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unipool/unipool-backend/internal/models"
)

func viewRide(id string, status models.RideStatus, departure time.Time) models.Ride {
	return models.Ride{
		ID:             id,
		Origin:         models.LocationTransportRoad,
		Destination:    models.LocationCollegeCampus,
		DepartureTime:  departure,
		TotalSeats:     4,
		SeatsAvailable: 4,
		Status:         status,
	}
}

func TestUpcomingForUser_FiltersAndSorts(t *testing.T) {
	viewer := testPassenger("+15550000001")
	now := time.Now()

	later := viewRide("r-later", models.StatusScheduled, now.Add(2*time.Hour))
	later.Passengers = []models.RidePassenger{viewer.AsPassenger()}
	later.SeatsAvailable = 3

	sooner := viewRide("r-sooner", models.StatusScheduled, now.Add(time.Hour))
	sooner.Passengers = []models.RidePassenger{viewer.AsPassenger()}
	sooner.SeatsAvailable = 3

	done := viewRide("r-done", models.StatusCompleted, now.Add(-time.Hour))
	done.Passengers = []models.RidePassenger{viewer.AsPassenger()}

	stranger := viewRide("r-stranger", models.StatusScheduled, now.Add(time.Hour))

	upcoming := UpcomingForUser([]models.Ride{later, done, stranger, sooner}, viewer)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "r-sooner", upcoming[0].ID)
	assert.Equal(t, "r-later", upcoming[1].ID)
}

func TestUpcomingForUser_IncludesRequester(t *testing.T) {
	viewer := testPassenger("+15550000001")
	snapshot := viewer.AsPassenger()

	req := viewRide("r-req", models.StatusRequested, time.Now().Add(time.Hour))
	req.RequestedBy = &snapshot

	upcoming := UpcomingForUser([]models.Ride{req}, viewer)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "r-req", upcoming[0].ID)
}

func TestPastForUser_MostRecentFirst(t *testing.T) {
	driver := testDriver()
	now := time.Now()

	older := viewRide("r-older", models.StatusCompleted, now.Add(-48*time.Hour))
	older.DriverID = driver.ID
	newer := viewRide("r-newer", models.StatusCancelled, now.Add(-24*time.Hour))
	newer.DriverID = driver.ID
	active := viewRide("r-active", models.StatusOnRoute, now)
	active.DriverID = driver.ID

	past := PastForUser([]models.Ride{older, active, newer}, driver)
	require.Len(t, past, 2)
	assert.Equal(t, "r-newer", past[0].ID)
	assert.Equal(t, "r-older", past[1].ID)
}

func TestPendingRequests(t *testing.T) {
	now := time.Now()
	r1 := viewRide("r-1", models.StatusRequested, now.Add(2*time.Hour))
	r2 := viewRide("r-2", models.StatusRequested, now.Add(time.Hour))
	r3 := viewRide("r-3", models.StatusScheduled, now.Add(time.Hour))

	pending := PendingRequests([]models.Ride{r1, r3, r2})
	require.Len(t, pending, 2)
	assert.Equal(t, "r-2", pending[0].ID)
	assert.Equal(t, "r-1", pending[1].ID)
}

func TestCurrentRide_NoneActive(t *testing.T) {
	viewer := testPassenger("+15550000001")
	scheduled := viewRide("r-1", models.StatusScheduled, time.Now().Add(time.Hour))
	scheduled.Passengers = []models.RidePassenger{viewer.AsPassenger()}

	assert.Nil(t, CurrentRide([]models.Ride{scheduled}, viewer))
}

func TestCurrentRide_SingleActive(t *testing.T) {
	viewer := testPassenger("+15550000001")
	active := viewRide("r-1", models.StatusOnRoute, time.Now())
	active.Passengers = []models.RidePassenger{viewer.AsPassenger()}

	current := CurrentRide([]models.Ride{active}, viewer)
	require.NotNil(t, current)
	assert.Equal(t, "r-1", current.ID)
}

func TestCurrentRide_MultiplicityIsLogged(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	viewer := testPassenger("+15550000001")
	now := time.Now()

	first := viewRide("r-first", models.StatusOnRoute, now.Add(time.Hour))
	first.Passengers = []models.RidePassenger{viewer.AsPassenger()}
	second := viewRide("r-second", models.StatusWaiting, now.Add(2*time.Hour))
	second.Passengers = []models.RidePassenger{viewer.AsPassenger()}

	current := CurrentRide([]models.Ride{second, first}, viewer)
	require.NotNil(t, current)
	assert.Equal(t, "r-first", current.ID, "the soonest-departing match wins")

	require.NotEmpty(t, hook.Entries)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, viewer.ID, entry.Data["user_id"])
}

func TestCapabilitiesFor_Passenger(t *testing.T) {
	viewer := testPassenger("+15550000001")
	r := viewRide("r-1", models.StatusScheduled, time.Now().Add(time.Hour))
	r.DriverID = "+15550000100"

	caps := CapabilitiesFor(viewer, &r)
	assert.True(t, caps.CanReserveSeat)
	assert.False(t, caps.CanCancelReservation)
	assert.False(t, caps.CanStartRide)
	assert.False(t, caps.CanDeleteRide)

	r.Passengers = []models.RidePassenger{viewer.AsPassenger()}
	r.RecomputeSeats()
	caps = CapabilitiesFor(viewer, &r)
	assert.False(t, caps.CanReserveSeat)
	assert.True(t, caps.CanCancelReservation)
}

func TestCapabilitiesFor_DriverOwner(t *testing.T) {
	driver := testDriver()
	r := viewRide("r-1", models.StatusScheduled, time.Now().Add(time.Hour))
	r.DriverID = driver.ID

	caps := CapabilitiesFor(driver, &r)
	assert.True(t, caps.CanStartRide)
	assert.True(t, caps.CanCancelRide)
	assert.True(t, caps.CanEditRide)
	assert.True(t, caps.CanDeleteRide)
	assert.False(t, caps.CanCompleteRide)
	assert.False(t, caps.CanReserveSeat)
}

func TestCapabilitiesFor_TerminalRideHasNone(t *testing.T) {
	driver := testDriver()
	r := viewRide("r-1", models.StatusCompleted, time.Now())
	r.DriverID = driver.ID

	assert.Equal(t, models.Capabilities{}, CapabilitiesFor(driver, &r))
}

package location

import (
	"math"
	"sync"
	"testing"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testZones = []location.Zone{
	{Name: "HQ", Latitude: 12.9716, Longitude: 77.5946, RadiusMeters: 200},
	{Name: "Annex", Latitude: 12.9730, Longitude: 77.5946, RadiusMeters: 300},
	{Name: "Plant", Latitude: 13.1000, Longitude: 77.7000, RadiusMeters: 500},
}

func newTestGate(t *testing.T) location.Gate {
	t.Helper()
	g, err := NewGate(testZones)
	require.NoError(t, err)
	return g
}

func TestGate_Validate_InsideZone(t *testing.T) {
	g := newTestGate(t)

	res, err := g.Validate(13.1001, 77.7001)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	require.NotNil(t, res.ZoneName)
	assert.Equal(t, "Plant", *res.ZoneName)
}

func TestGate_Validate_NearestOverlappingZoneWins(t *testing.T) {
	g := newTestGate(t)

	// Inside both HQ and Annex, closer to HQ's centre.
	res, err := g.Validate(12.9717, 77.5946)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, "HQ", res.Name())

	// Inside both, closer to Annex.
	res, err = g.Validate(12.9728, 77.5946)
	require.NoError(t, err)
	assert.Equal(t, "Annex", res.Name())
}

func TestGate_Validate_OutsideAllZones(t *testing.T) {
	g := newTestGate(t)

	res, err := g.Validate(0, 0)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Nil(t, res.ZoneName)
	assert.Equal(t, "", res.Name())
}

func TestGate_Validate_InvalidCoordinate(t *testing.T) {
	g := newTestGate(t)

	cases := []struct {
		name     string
		lat, lon float64
	}{
		{"latitude too high", 90.5, 0},
		{"latitude too low", -91, 0},
		{"longitude too high", 0, 180.1},
		{"longitude too low", 0, -181},
		{"NaN", math.NaN(), 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := g.Validate(c.lat, c.lon)
			assert.ErrorIs(t, err, location.ErrInvalidCoordinate)
		})
	}
}

func TestGate_Validate_BoundaryValuesAreAccepted(t *testing.T) {
	g := newTestGate(t)

	for _, c := range [][2]float64{{90, 180}, {-90, -180}} {
		_, err := g.Validate(c[0], c[1])
		assert.NoError(t, err)
	}
}

func TestGate_NoZonesDeniesEverything(t *testing.T) {
	g, err := NewGate(nil)
	require.NoError(t, err)

	res, err := g.Validate(12.9716, 77.5946)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestNewGate_RejectsInvalidZones(t *testing.T) {
	cases := []location.Zone{
		{Name: "", Latitude: 1, Longitude: 1, RadiusMeters: 10},
		{Name: "bad-centre", Latitude: 100, Longitude: 1, RadiusMeters: 10},
		{Name: "no-radius", Latitude: 1, Longitude: 1, RadiusMeters: 0},
	}
	for _, z := range cases {
		_, err := NewGate([]location.Zone{z})
		assert.ErrorIs(t, err, location.ErrInvalidZone, "zone %+v", z)
	}
}

func TestGate_ZoneListIsImmutable(t *testing.T) {
	zones := []location.Zone{{Name: "HQ", Latitude: 1, Longitude: 1, RadiusMeters: 100}}
	g, err := NewGate(zones)
	require.NoError(t, err)

	zones[0].Name = "Changed"
	returned := g.Zones()
	returned[0].Name = "AlsoChanged"

	assert.Equal(t, "HQ", g.Zones()[0].Name)
}

func TestGate_ConcurrentValidate(t *testing.T) {
	g := newTestGate(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := g.Validate(12.9716, 77.5946)
			assert.NoError(t, err)
			assert.Equal(t, "HQ", res.Name())
		}()
	}
	wg.Wait()
}

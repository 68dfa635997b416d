package location

import (
	"fmt"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/location"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/utils"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/validator"
)

type GateImpl struct {
	zones []location.Zone
}

// NewGate copies zones into an immutable gate. The zone list is never modified afterwards.
func NewGate(zones []location.Zone) (location.Gate, error) {
	copied := make([]location.Zone, 0, len(zones))
	for i, z := range zones {
		if validator.IsEmpty(z.Name) {
			return nil, fmt.Errorf("zone #%d: name is required: %w", i, location.ErrInvalidZone)
		}
		if !validator.IsValidLatitude(z.Latitude) || !validator.IsValidLongitude(z.Longitude) {
			return nil, fmt.Errorf("zone %q: centre is out of range: %w", z.Name, location.ErrInvalidZone)
		}
		if z.RadiusMeters <= 0 {
			return nil, fmt.Errorf("zone %q: radius must be positive: %w", z.Name, location.ErrInvalidZone)
		}
		copied = append(copied, z)
	}
	return &GateImpl{zones: copied}, nil
}

// Validate implements location.Gate.
// The nearest containing zone wins; ties keep the first configured zone.
func (g *GateImpl) Validate(latitude, longitude float64) (location.Result, error) {
	if !validator.IsValidLatitude(latitude) || !validator.IsValidLongitude(longitude) {
		return location.Result{}, location.ErrInvalidCoordinate
	}

	best := -1
	bestDistance := 0.0
	for i, z := range g.zones {
		d := utils.CalculateHaversineDistance(latitude, longitude, z.Latitude, z.Longitude)
		if d > z.RadiusMeters {
			continue
		}
		if best == -1 || d < bestDistance {
			best = i
			bestDistance = d
		}
	}

	if best == -1 {
		return location.Result{Allowed: false}, nil
	}

	name := g.zones[best].Name
	return location.Result{
		Allowed:        true,
		ZoneName:       &name,
		DistanceMeters: bestDistance,
	}, nil
}

// Zones implements location.Gate.
func (g *GateImpl) Zones() []location.Zone {
	out := make([]location.Zone, len(g.zones))
	copy(out, g.zones)
	return out
}

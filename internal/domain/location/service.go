package location

// Gate decides whether a coordinate lies inside any permitted zone.
// Implementations must be safe for concurrent use.
type Gate interface {
	Validate(latitude, longitude float64) (Result, error)
	Zones() []Zone
}

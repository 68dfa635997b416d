package location

// Zone is a permitted attendance location: a circle around a centre coordinate.
type Zone struct {
	Name         string  `json:"name" yaml:"name"`
	Latitude     float64 `json:"latitude" yaml:"latitude"`
	Longitude    float64 `json:"longitude" yaml:"longitude"`
	RadiusMeters float64 `json:"radius_meters" yaml:"radius_meters"`
}

// Result is the outcome of checking a coordinate against the configured zones.
type Result struct {
	Allowed        bool
	ZoneName       *string
	DistanceMeters float64
}

// Name returns the matched zone name or an empty string.
func (r Result) Name() string {
	if r.ZoneName == nil {
		return ""
	}
	return *r.ZoneName
}

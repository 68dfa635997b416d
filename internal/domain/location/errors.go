package location

import "errors"

var (
	ErrInvalidCoordinate = errors.New("coordinate is out of range")
	ErrInvalidZone       = errors.New("invalid permitted zone definition")
)

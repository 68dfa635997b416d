package attendance

import "time"

type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseClockedIn Phase = "clocked_in"
	PhaseCompleted Phase = "completed"
)

// State is the per-day attendance state. Exactly one of Pending, ClockedIn or Completed.
type State interface {
	Phase() Phase
	isState()
}

// Pending is a stored record without a clock-in.
type Pending struct{}

type ClockedIn struct {
	InTime time.Time
}

type Completed struct {
	InTime      time.Time
	OutTime     time.Time
	HoursWorked float64
}

func (Pending) Phase() Phase   { return PhasePending }
func (ClockedIn) Phase() Phase { return PhaseClockedIn }
func (Completed) Phase() Phase { return PhaseCompleted }

func (Pending) isState()   {}
func (ClockedIn) isState() {}
func (Completed) isState() {}

// StateFromColumns maps nullable storage columns onto a State.
// The returned flag is non-empty when the columns violate the in-before-out rule.
func StateFromColumns(in, out *time.Time, hours *float64) (State, string) {
	switch {
	case in == nil && out == nil:
		return Pending{}, ""
	case in == nil:
		return Pending{}, DataQualityOutWithoutIn
	case out == nil:
		return ClockedIn{InTime: *in}, ""
	}

	if !out.After(*in) {
		return Completed{InTime: *in, OutTime: *out}, DataQualityOutBeforeIn
	}

	var cached float64
	if hours != nil {
		cached = *hours
	}
	return Completed{InTime: *in, OutTime: *out, HoursWorked: cached}, ""
}

// StateColumns is the inverse of StateFromColumns.
func StateColumns(s State) (in, out *time.Time, hours float64) {
	switch v := s.(type) {
	case ClockedIn:
		t := v.InTime
		return &t, nil, 0
	case Completed:
		i, o := v.InTime, v.OutTime
		return &i, &o, v.HoursWorked
	default:
		return nil, nil, 0
	}
}

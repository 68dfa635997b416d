package attendance

import (
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/pkg/utils"
)

const DateLayout = "2006-01-02"

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// Data quality flags attached to records whose stored timestamps cannot yield valid hours.
const (
	DataQualityMalformedInTime  = "malformed_in_time"
	DataQualityMalformedOutTime = "malformed_out_time"
	DataQualityOutBeforeIn      = "out_before_in"
	DataQualityOutWithoutIn     = "out_without_in"
)

// Record is one attendance entry per employee per calendar day.
type Record struct {
	ID          string
	EmployeeID  int64
	Date        time.Time
	State       State
	Status      Status
	DataQuality string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r Record) Phase() Phase {
	if r.State == nil {
		return PhasePending
	}
	return r.State.Phase()
}

func (r Record) InTime() *time.Time {
	in, _, _ := StateColumns(r.State)
	return in
}

func (r Record) OutTime() *time.Time {
	_, out, _ := StateColumns(r.State)
	return out
}

// Hours returns the cached hours of a completed record, recomputing them when the cache is empty.
// Records flagged with a data quality issue report zero.
func (r Record) Hours() float64 {
	if r.DataQuality != "" {
		return 0
	}
	c, ok := r.State.(Completed)
	if !ok {
		return 0
	}
	if c.HoursWorked > 0 {
		return c.HoursWorked
	}
	return ComputeHours(c.InTime, c.OutTime)
}

// ComputeHours returns (out - in) in hours rounded to two decimals, or zero for non-positive spans.
func ComputeHours(in, out time.Time) float64 {
	d := out.Sub(in)
	if d <= 0 {
		return 0
	}
	return utils.RoundTo(d.Hours(), 2)
}

// DateOf returns the calendar date of t in loc, normalised to midnight UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

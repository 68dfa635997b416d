package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/pkg/validator"
)

const (
	PresetToday = "today"
	PresetWeek  = "week"
	PresetMonth = "month"
	PresetAll   = "all"
	LabelCustom = "custom"
)

// RangeFilter is the report filter grammar. Explicit forms take priority over the preset:
// Date, then StartDate+EndDate, then Month+Year, then Preset (default today).
type RangeFilter struct {
	Preset    string  `json:"filter,omitempty"`
	Date      *string `json:"date,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Month     *int    `json:"month,omitempty"`
	Year      *int    `json:"year,omitempty"`

	// AllowAll permits the unbounded "all" preset.
	AllowAll bool `json:"-"`
}

// DateRange is a half-open interval of calendar dates [Start, End).
type DateRange struct {
	Start     time.Time
	End       time.Time
	label     string
	unbounded bool
}

func NewDateRange(start, end time.Time, label string) DateRange {
	return DateRange{Start: start, End: end, label: label}
}

func UnboundedRange() DateRange {
	return DateRange{label: PresetAll, unbounded: true}
}

// Label is the filter name that produced the range: today, week, month, all or custom.
func (r DateRange) Label() string {
	return r.label
}

func (r DateRange) IsUnbounded() bool {
	return r.unbounded
}

func (r DateRange) Contains(d time.Time) bool {
	if r.unbounded {
		return true
	}
	return !d.Before(r.Start) && d.Before(r.End)
}

// Days is the number of calendar days covered, or zero for an unbounded range.
func (r DateRange) Days() int {
	if r.unbounded {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// ResolveRange turns a filter into a concrete half-open date interval relative to today.
func ResolveRange(f RangeFilter, today time.Time) (DateRange, error) {
	today = DateOf(today, nil)

	if f.Date != nil && *f.Date != "" {
		d, ok := validator.IsValidDate(*f.Date)
		if !ok {
			return DateRange{}, fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrInvalidFilter)
		}
		return NewDateRange(d, d.AddDate(0, 0, 1), LabelCustom), nil
	}

	hasStart := f.StartDate != nil && *f.StartDate != ""
	hasEnd := f.EndDate != nil && *f.EndDate != ""
	if hasStart || hasEnd {
		if !hasStart || !hasEnd {
			return DateRange{}, fmt.Errorf("%w: start_date and end_date must be supplied together", ErrInvalidFilter)
		}
		start, ok := validator.IsValidDate(*f.StartDate)
		if !ok {
			return DateRange{}, fmt.Errorf("%w: start_date must be in YYYY-MM-DD format", ErrInvalidFilter)
		}
		end, ok := validator.IsValidDate(*f.EndDate)
		if !ok {
			return DateRange{}, fmt.Errorf("%w: end_date must be in YYYY-MM-DD format", ErrInvalidFilter)
		}
		if !end.After(start) {
			return DateRange{}, fmt.Errorf("%w: end_date must be after start_date", ErrInvalidFilter)
		}
		return NewDateRange(start, end, LabelCustom), nil
	}

	if f.Month != nil || f.Year != nil {
		if f.Month == nil || f.Year == nil {
			return DateRange{}, fmt.Errorf("%w: month and year must be supplied together", ErrInvalidFilter)
		}
		if *f.Month < 1 || *f.Month > 12 {
			return DateRange{}, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidFilter)
		}
		if *f.Year < 1 || *f.Year > 9999 {
			return DateRange{}, fmt.Errorf("%w: year must be between 1 and 9999", ErrInvalidFilter)
		}
		start, end := monthBounds(*f.Year, time.Month(*f.Month))
		return NewDateRange(start, end, LabelCustom), nil
	}

	preset := f.Preset
	if preset == "" {
		preset = PresetToday
	}

	allowed := []string{PresetToday, PresetWeek, PresetMonth}
	if f.AllowAll {
		allowed = append(allowed, PresetAll)
	}
	if !validator.IsInSlice(preset, allowed) {
		return DateRange{}, fmt.Errorf("%w: unknown filter %q, use %s", ErrInvalidFilter, preset, strings.Join(allowed, ", "))
	}

	switch preset {
	case PresetWeek:
		offset := (int(today.Weekday()) + 6) % 7
		monday := today.AddDate(0, 0, -offset)
		return NewDateRange(monday, monday.AddDate(0, 0, 7), PresetWeek), nil
	case PresetMonth:
		start, end := monthBounds(today.Year(), today.Month())
		return NewDateRange(start, end, PresetMonth), nil
	case PresetAll:
		return UnboundedRange(), nil
	default:
		return NewDateRange(today, today.AddDate(0, 0, 1), PresetToday), nil
	}
}

func monthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, 0)
}

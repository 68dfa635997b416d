package attendance

import (
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/pkg/utils"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/validator"
)

const (
	DisplayTimeLayout = "03:04 PM"
	displayEmpty      = "-"
)

// ========================================
// CLOCK DTOs
// ========================================

// ClockRequest is used for both clock-in and clock-out. EmployeeID comes from the token claims.
type ClockRequest struct {
	EmployeeID int64   `json:"-"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

func (r *ClockRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a positive integer",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ClockInResponse struct {
	RecordID     string `json:"record_id"`
	EmployeeID   int64  `json:"employee_id"`
	Date         string `json:"date"`
	LocationName string `json:"location_name"`
	Time         string `json:"time"`
	ClockInAt    string `json:"clock_in_at"`
	Status       string `json:"status"`
}

type ClockOutResponse struct {
	RecordID     string  `json:"record_id"`
	EmployeeID   int64   `json:"employee_id"`
	Date         string  `json:"date"`
	LocationName string  `json:"location_name"`
	Time         string  `json:"time"`
	ClockOutAt   string  `json:"clock_out_at"`
	HoursWorked  float64 `json:"hours_worked"`
}

// ========================================
// REPORT DTOs
// ========================================

type RecordResponse struct {
	ID             string  `json:"id"`
	EmployeeID     int64   `json:"employee_id"`
	Date           string  `json:"date"`
	InTime         *string `json:"in_time"`
	OutTime        *string `json:"out_time"`
	InTimeDisplay  string  `json:"in_time_display"`
	OutTimeDisplay string  `json:"out_time_display"`
	HoursWorked    float64 `json:"hours_worked"`
	Status         string  `json:"status"`
	State          string  `json:"state"`
	DataQuality    string  `json:"data_quality,omitempty"`
}

type Summary struct {
	TotalHours  float64 `json:"total_hours"`
	PresentDays int     `json:"present_days"`
	TotalDays   int     `json:"total_days"`
}

type DateRangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

type EmployeeReport struct {
	EmployeeID int64              `json:"employee_id"`
	Filter     string             `json:"filter"`
	DateRange  *DateRangeResponse `json:"date_range"`
	Records    []RecordResponse   `json:"records"`
	Summary    Summary            `json:"summary"`
}

type EmployeeAttendance struct {
	EmployeeID   int64            `json:"employee_id"`
	EmployeeName string           `json:"employee_name"`
	Email        string           `json:"email"`
	Records      []RecordResponse `json:"records"`
	Summary      Summary          `json:"summary"`
}

type AllAttendanceReport struct {
	Filter     string               `json:"filter"`
	DateRange  *DateRangeResponse   `json:"date_range"`
	Attendance []EmployeeAttendance `json:"attendance"`
}

type DeleteRangeResponse struct {
	EmployeeID   int64              `json:"employee_id"`
	DeletedCount int64              `json:"deleted_count"`
	Filter       string             `json:"filter"`
	DateRange    *DateRangeResponse `json:"date_range"`
}

// NewDateRangeResponse returns nil for an unbounded range.
func NewDateRangeResponse(r DateRange) *DateRangeResponse {
	if r.IsUnbounded() {
		return nil
	}
	return &DateRangeResponse{
		Start: FormatDate(r.Start),
		End:   FormatDate(r.End),
		Days:  r.Days(),
	}
}

// NewRecordResponse renders a record. Display times use loc; nil means UTC.
func NewRecordResponse(r Record, loc *time.Location) RecordResponse {
	if loc == nil {
		loc = time.UTC
	}

	resp := RecordResponse{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		Date:           FormatDate(r.Date),
		InTimeDisplay:  displayEmpty,
		OutTimeDisplay: displayEmpty,
		HoursWorked:    r.Hours(),
		Status:         string(r.Status),
		State:          string(r.Phase()),
		DataQuality:    r.DataQuality,
	}

	if in := r.InTime(); in != nil {
		s := in.UTC().Format(time.RFC3339Nano)
		resp.InTime = &s
		resp.InTimeDisplay = in.In(loc).Format(DisplayTimeLayout)
	}
	if out := r.OutTime(); out != nil {
		s := out.UTC().Format(time.RFC3339Nano)
		resp.OutTime = &s
		resp.OutTimeDisplay = out.In(loc).Format(DisplayTimeLayout)
	}

	return resp
}

// Summarize totals hours over records and counts present days.
func Summarize(records []Record) Summary {
	var total float64
	present := 0

	for _, r := range records {
		total += r.Hours()
		if r.Status == StatusPresent {
			present++
		}
	}

	return Summary{
		TotalHours:  utils.RoundTo(total, 2),
		PresentDays: present,
		TotalDays:   len(records),
	}
}

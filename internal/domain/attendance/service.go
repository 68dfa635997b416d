package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// ClockIn records the first arrival of the day inside an allowed zone
	ClockIn(ctx context.Context, req ClockRequest) (ClockInResponse, error)

	// ClockOut closes the day's record and caches hours worked
	ClockOut(ctx context.Context, req ClockRequest) (ClockOutResponse, error)

	// QueryEmployee returns one employee's records and summary for the filter (default "all")
	QueryEmployee(ctx context.Context, employeeID int64, filter RangeFilter) (EmployeeReport, error)

	// QueryAll returns every employee grouped with their records (default "today")
	QueryAll(ctx context.Context, filter RangeFilter) (AllAttendanceReport, error)

	// DeleteRange removes one employee's records inside the filter's range
	DeleteRange(ctx context.Context, employeeID int64, filter RangeFilter) (DeleteRangeResponse, error)

	// DeleteAttendance removes a single record by id
	DeleteAttendance(ctx context.Context, id string) error
}

package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// Uniqueness of (employee, date) and the clock transitions are enforced atomically by the store.
type AttendanceRepository interface {
	// ClockIn creates the day's record with InTime set, or fills InTime of a pending record.
	// Returns ErrAlreadyClockedIn without mutating anything when InTime is already set.
	ClockIn(ctx context.Context, employeeID int64, date time.Time, inTime time.Time) (Record, error)

	// ClockOut sets OutTime and the cached hours on a clocked-in record identified by id.
	// Returns ErrTransitionRejected when the record is missing or not clocked in.
	ClockOut(ctx context.Context, id string, outTime time.Time, hours float64) (Record, error)

	// GetByEmployeeAndDate returns nil, nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*Record, error)

	// ListByEmployee returns records in the range, newest date first.
	ListByEmployee(ctx context.Context, employeeID int64, r DateRange) ([]Record, error)

	// ListByRange returns every employee's records in the range, newest date first.
	ListByRange(ctx context.Context, r DateRange) ([]Record, error)

	Delete(ctx context.Context, id string) error
	DeleteByEmployeeAndRange(ctx context.Context, employeeID int64, r DateRange) (int64, error)
}

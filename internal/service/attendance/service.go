package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-portal/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-portal/internal/domain/location"
)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	gate           location.Gate
	loc            *time.Location
	now            func() time.Time
}

type Option func(*AttendanceServiceImpl)

// WithClock overrides the time source used for clock events and "today".
func WithClock(now func() time.Time) Option {
	return func(s *AttendanceServiceImpl) {
		s.now = now
	}
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	gate location.Gate,
	loc *time.Location,
	opts ...Option,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	s := &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		gate:           gate,
		loc:            loc,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClockIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockRequest) (attendance.ClockInResponse, error) {
	zone, err := s.admit(ctx, req)
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	now := s.clock()
	date := attendance.DateOf(now, s.loc)

	var record attendance.Record
	err = retryOnConflict(ctx, "clock_in", func() error {
		var err error
		record, err = s.attendanceRepo.ClockIn(ctx, req.EmployeeID, date, now)
		return err
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyClockedIn) || errors.Is(err, attendance.ErrStorageConflict) {
			return attendance.ClockInResponse{}, err
		}
		return attendance.ClockInResponse{}, fmt.Errorf("failed to clock in: %w", err)
	}

	slog.Info("Employee clocked in", "employee_id", req.EmployeeID, "date", attendance.FormatDate(date), "zone", zone.Name())

	inTime := now
	if t := record.InTime(); t != nil {
		inTime = *t
	}

	return attendance.ClockInResponse{
		RecordID:     record.ID,
		EmployeeID:   req.EmployeeID,
		Date:         attendance.FormatDate(date),
		LocationName: zone.Name(),
		Time:         inTime.In(s.loc).Format(attendance.DisplayTimeLayout),
		ClockInAt:    inTime.UTC().Format(time.RFC3339Nano),
		Status:       string(attendance.StatusPresent),
	}, nil
}

// ClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockRequest) (attendance.ClockOutResponse, error) {
	zone, err := s.admit(ctx, req)
	if err != nil {
		return attendance.ClockOutResponse{}, err
	}

	now := s.clock()
	date := attendance.DateOf(now, s.loc)

	// A rejected conditional update means the record changed under us; the second read classifies it.
	for attempt := 1; attempt <= 2; attempt++ {
		current, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
		if err != nil {
			if errors.Is(err, attendance.ErrStorageConflict) && attempt == 1 {
				continue
			}
			return attendance.ClockOutResponse{}, wrapStorageError("failed to get today's attendance", err)
		}
		if current == nil {
			return attendance.ClockOutResponse{}, attendance.ErrNotClockedIn
		}

		var clockedIn attendance.ClockedIn
		switch st := current.State.(type) {
		case attendance.ClockedIn:
			clockedIn = st
		case attendance.Completed:
			return attendance.ClockOutResponse{}, attendance.ErrAlreadyClockedOut
		default:
			return attendance.ClockOutResponse{}, attendance.ErrNotClockedIn
		}

		if !now.After(clockedIn.InTime) {
			return attendance.ClockOutResponse{}, attendance.ErrInvalidTimeOrder
		}

		hours := attendance.ComputeHours(clockedIn.InTime, now)
		updated, err := s.attendanceRepo.ClockOut(ctx, current.ID, now, hours)
		if err != nil {
			if errors.Is(err, attendance.ErrTransitionRejected) || errors.Is(err, attendance.ErrStorageConflict) {
				if attempt == 1 {
					continue
				}
				return attendance.ClockOutResponse{}, attendance.ErrStorageConflict
			}
			return attendance.ClockOutResponse{}, fmt.Errorf("failed to clock out: %w", err)
		}

		slog.Info("Employee clocked out", "employee_id", req.EmployeeID, "date", attendance.FormatDate(date), "hours", hours)

		return attendance.ClockOutResponse{
			RecordID:     updated.ID,
			EmployeeID:   req.EmployeeID,
			Date:         attendance.FormatDate(date),
			LocationName: zone.Name(),
			Time:         now.In(s.loc).Format(attendance.DisplayTimeLayout),
			ClockOutAt:   now.UTC().Format(time.RFC3339Nano),
			HoursWorked:  hours,
		}, nil
	}

	return attendance.ClockOutResponse{}, attendance.ErrStorageConflict
}

// admit runs the checks shared by clock-in and clock-out: request shape, location, then employee.
func (s *AttendanceServiceImpl) admit(ctx context.Context, req attendance.ClockRequest) (location.Result, error) {
	if err := req.Validate(); err != nil {
		return location.Result{}, err
	}

	result, err := s.gate.Validate(req.Latitude, req.Longitude)
	if err != nil {
		return location.Result{}, fmt.Errorf("latitude %v, longitude %v: %w", req.Latitude, req.Longitude, err)
	}
	if !result.Allowed {
		return location.Result{}, attendance.ErrLocationDenied
	}

	if err := s.ensureEmployee(ctx, req.EmployeeID); err != nil {
		return location.Result{}, err
	}

	return result, nil
}

func (s *AttendanceServiceImpl) ensureEmployee(ctx context.Context, employeeID int64) error {
	exists, err := s.employeeRepo.Exists(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("failed to check employee: %w", err)
	}
	if !exists {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// clock returns the current instant in UTC at the precision every store preserves.
func (s *AttendanceServiceImpl) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *AttendanceServiceImpl) today() time.Time {
	return s.now().In(s.loc)
}

// retryOnConflict runs fn and repeats it once when the store reports a serialization conflict.
func retryOnConflict(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if !errors.Is(err, attendance.ErrStorageConflict) {
		return err
	}
	if ctx.Err() != nil {
		return err
	}
	slog.Warn("Attendance storage conflict, retrying", "operation", op)
	return fn()
}

func wrapStorageError(msg string, err error) error {
	if errors.Is(err, attendance.ErrStorageConflict) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-portal/internal/domain/employee"
	"golang.org/x/sync/errgroup"
)

// QueryEmployee implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) QueryEmployee(ctx context.Context, employeeID int64, filter attendance.RangeFilter) (attendance.EmployeeReport, error) {
	if filter.Preset == "" {
		filter.Preset = attendance.PresetAll
	}
	filter.AllowAll = true

	r, err := attendance.ResolveRange(filter, s.today())
	if err != nil {
		return attendance.EmployeeReport{}, err
	}

	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return attendance.EmployeeReport{}, err
	}

	records, err := s.attendanceRepo.ListByEmployee(ctx, employeeID, r)
	if err != nil {
		return attendance.EmployeeReport{}, wrapStorageError("failed to list attendance", err)
	}

	return attendance.EmployeeReport{
		EmployeeID: employeeID,
		Filter:     r.Label(),
		DateRange:  attendance.NewDateRangeResponse(r),
		Records:    s.toRecordResponses(records),
		Summary:    attendance.Summarize(records),
	}, nil
}

// QueryAll implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) QueryAll(ctx context.Context, filter attendance.RangeFilter) (attendance.AllAttendanceReport, error) {
	filter.AllowAll = false

	r, err := attendance.ResolveRange(filter, s.today())
	if err != nil {
		return attendance.AllAttendanceReport{}, err
	}

	var (
		employees []employee.Employee
		records   []attendance.Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		employees, err = s.employeeRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListByRange(gctx, r)
		if err != nil {
			return wrapStorageError("failed to list attendance", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return attendance.AllAttendanceReport{}, err
	}

	byEmployee := make(map[int64][]attendance.Record, len(employees))
	for _, rec := range records {
		byEmployee[rec.EmployeeID] = append(byEmployee[rec.EmployeeID], rec)
	}

	seen := make(map[int64]struct{}, len(employees))
	rows := make([]attendance.EmployeeAttendance, 0, len(employees))
	for _, e := range employees {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}

		own := byEmployee[e.ID]
		rows = append(rows, attendance.EmployeeAttendance{
			EmployeeID:   e.ID,
			EmployeeName: e.Name,
			Email:        e.Email,
			Records:      s.toRecordResponses(own),
			Summary:      attendance.Summarize(own),
		})
		delete(byEmployee, e.ID)
	}

	if len(byEmployee) > 0 {
		slog.Warn("Attendance records without a matching employee were skipped", "employee_count", len(byEmployee))
	}

	return attendance.AllAttendanceReport{
		Filter:     r.Label(),
		DateRange:  attendance.NewDateRangeResponse(r),
		Attendance: rows,
	}, nil
}

// DeleteRange implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteRange(ctx context.Context, employeeID int64, filter attendance.RangeFilter) (attendance.DeleteRangeResponse, error) {
	if employeeID <= 0 {
		return attendance.DeleteRangeResponse{}, employee.ErrEmployeeNotFound
	}
	filter.AllowAll = false

	r, err := attendance.ResolveRange(filter, s.today())
	if err != nil {
		return attendance.DeleteRangeResponse{}, err
	}

	var deleted int64
	err = retryOnConflict(ctx, "delete_range", func() error {
		var err error
		deleted, err = s.attendanceRepo.DeleteByEmployeeAndRange(ctx, employeeID, r)
		return err
	})
	if err != nil {
		return attendance.DeleteRangeResponse{}, wrapStorageError("failed to delete attendance", err)
	}

	slog.Info("Attendance records purged", "employee_id", employeeID, "filter", r.Label(), "deleted", deleted)

	return attendance.DeleteRangeResponse{
		EmployeeID:   employeeID,
		DeletedCount: deleted,
		Filter:       r.Label(),
		DateRange:    attendance.NewDateRangeResponse(r),
	}, nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, id string) error {
	if id == "" {
		return attendance.ErrAttendanceNotFound
	}

	if err := s.attendanceRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return err
		}
		return wrapStorageError("failed to delete attendance", err)
	}
	return nil
}

func (s *AttendanceServiceImpl) toRecordResponses(records []attendance.Record) []attendance.RecordResponse {
	out := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, attendance.NewRecordResponse(rec, s.loc))
	}
	return out
}

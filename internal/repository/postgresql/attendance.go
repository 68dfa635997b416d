package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-portal/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const attendanceColumns = `id, employee_id, date, clock_in, clock_out, hours_worked, status, created_at, updated_at`

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

// ClockIn implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ClockIn(ctx context.Context, employeeID int64, date time.Time, inTime time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	// The conflict branch only fires for a pending row; an existing clock-in yields no row.
	query := `
		INSERT INTO attendance_records (id, employee_id, date, clock_in, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $4, $4)
		ON CONFLICT (employee_id, date) DO UPDATE
		SET clock_in = EXCLUDED.clock_in,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		WHERE attendance_records.clock_in IS NULL
		RETURNING ` + attendanceColumns

	rec, err := scanRecord(q.QueryRow(ctx, query, id.String(), employeeID, date, inTime, string(attendance.StatusPresent)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.Record{}, mapAttendanceError("failed to clock in", err)
	}

	return rec, nil
}

// ClockOut implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ClockOut(ctx context.Context, id string, outTime time.Time, hours float64) (attendance.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.Record{}, attendance.ErrTransitionRejected
	}

	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET clock_out = $2, hours_worked = $3, updated_at = $2
		WHERE id = $1
		  AND clock_in IS NOT NULL
		  AND clock_out IS NULL
		  AND clock_in < $2
		RETURNING ` + attendanceColumns

	rec, err := scanRecord(q.QueryRow(ctx, query, id, outTime, hours))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrTransitionRejected
		}
		return attendance.Record{}, mapAttendanceError("failed to clock out", err)
	}

	return rec, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND date = $2`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapAttendanceError("failed to get attendance", err)
	}

	return &rec, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID int64, r attendance.DateRange) ([]attendance.Record, error) {
	where, args := rangeConditions(r, []string{"employee_id = $1"}, []interface{}{employeeID})
	return a.list(ctx, where, args)
}

// ListByRange implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ListByRange(ctx context.Context, r attendance.DateRange) ([]attendance.Record, error) {
	where, args := rangeConditions(r, nil, nil)
	return a.list(ctx, where, args)
}

func (a *attendanceRepositoryImpl) list(ctx context.Context, where []string, args []interface{}) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, employee_id ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapAttendanceError("failed to list attendance", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapAttendanceError("failed to iterate attendance", err)
	}

	return records, nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.ErrAttendanceNotFound
	}

	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return mapAttendanceError("failed to delete attendance", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// DeleteByEmployeeAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) DeleteByEmployeeAndRange(ctx context.Context, employeeID int64, r attendance.DateRange) (int64, error) {
	q := GetQuerier(ctx, a.db)

	where, args := rangeConditions(r, []string{"employee_id = $1"}, []interface{}{employeeID})
	query := `DELETE FROM attendance_records WHERE ` + strings.Join(where, " AND ")

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, mapAttendanceError("failed to delete attendance", err)
	}
	return tag.RowsAffected(), nil
}

// rangeConditions appends half-open date bounds unless the range is unbounded.
func rangeConditions(r attendance.DateRange, where []string, args []interface{}) ([]string, []interface{}) {
	if r.IsUnbounded() {
		return where, args
	}
	args = append(args, r.Start, r.End)
	where = append(where,
		fmt.Sprintf("date >= $%d", len(args)-1),
		fmt.Sprintf("date < $%d", len(args)),
	)
	return where, args
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var (
		rec      attendance.Record
		clockIn  *time.Time
		clockOut *time.Time
		hours    float64
		status   string
	)

	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &clockIn, &clockOut, &hours, &status, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return attendance.Record{}, err
	}

	rec.Date = attendance.DateOf(rec.Date, nil)
	rec.Status = attendance.Status(status)
	rec.State, rec.DataQuality = attendance.StateFromColumns(utcPtr(clockIn), utcPtr(clockOut), &hours)
	return rec, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// mapAttendanceError turns serialization failures and deadlocks into ErrStorageConflict.
func mapAttendanceError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%s: %w", msg, attendance.ErrStorageConflict)
		case "23503":
			return employee.ErrEmployeeNotFound
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

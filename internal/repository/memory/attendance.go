// Package memory implements the repository contracts in process memory for tests only; cmd/api never
// wires it. Every transition runs under one lock, so the atomic clock-in and clock-out guarantees hold
// as they do in the database stores. The extra hooks (Seed, Count, InjectConflicts, FailList,
// CascadeTo) exist to drive service and handler tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/attendance"
)

type recordKey struct {
	employeeID int64
	date       string
}

type AttendanceRepository struct {
	mu        sync.Mutex
	records   map[string]attendance.Record
	byKey     map[recordKey]string
	seq       int
	conflicts int
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{
		records: make(map[string]attendance.Record),
		byKey:   make(map[recordKey]string),
	}
}

var _ attendance.AttendanceRepository = (*AttendanceRepository)(nil)

func keyOf(employeeID int64, date time.Time) recordKey {
	return recordKey{employeeID: employeeID, date: attendance.FormatDate(date)}
}

// InjectConflicts makes the next n mutating calls fail with ErrStorageConflict.
func (m *AttendanceRepository) InjectConflicts(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts = n
}

func (m *AttendanceRepository) takeConflict() error {
	if m.conflicts > 0 {
		m.conflicts--
		return attendance.ErrStorageConflict
	}
	return nil
}

// Seed stores rec as-is, bypassing the transition rules. Missing id and status are filled in.
func (m *AttendanceRepository) Seed(rec attendance.Record) attendance.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = m.nextID()
	}
	if rec.Status == "" {
		rec.Status = attendance.StatusPresent
	}
	m.records[rec.ID] = rec
	m.byKey[keyOf(rec.EmployeeID, rec.Date)] = rec.ID
	return rec
}

func (m *AttendanceRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *AttendanceRepository) nextID() string {
	m.seq++
	return fmt.Sprintf("rec-%d", m.seq)
}

// ClockIn implements attendance.AttendanceRepository.
func (m *AttendanceRepository) ClockIn(ctx context.Context, employeeID int64, date time.Time, inTime time.Time) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeConflict(); err != nil {
		return attendance.Record{}, err
	}

	key := keyOf(employeeID, date)
	if id, ok := m.byKey[key]; ok {
		rec := m.records[id]
		if _, pending := rec.State.(attendance.Pending); !pending && rec.State != nil {
			return attendance.Record{}, attendance.ErrAlreadyClockedIn
		}
		rec.State = attendance.ClockedIn{InTime: inTime}
		rec.Status = attendance.StatusPresent
		rec.UpdatedAt = inTime
		m.records[id] = rec
		return rec, nil
	}

	rec := attendance.Record{
		ID:         m.nextID(),
		EmployeeID: employeeID,
		Date:       date,
		State:      attendance.ClockedIn{InTime: inTime},
		Status:     attendance.StatusPresent,
		CreatedAt:  inTime,
		UpdatedAt:  inTime,
	}
	m.records[rec.ID] = rec
	m.byKey[key] = rec.ID
	return rec, nil
}

// ClockOut implements attendance.AttendanceRepository.
func (m *AttendanceRepository) ClockOut(ctx context.Context, id string, outTime time.Time, hours float64) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeConflict(); err != nil {
		return attendance.Record{}, err
	}

	rec, ok := m.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrTransitionRejected
	}
	in, ok := rec.State.(attendance.ClockedIn)
	if !ok || !outTime.After(in.InTime) {
		return attendance.Record{}, attendance.ErrTransitionRejected
	}

	rec.State = attendance.Completed{InTime: in.InTime, OutTime: outTime, HoursWorked: hours}
	rec.UpdatedAt = outTime
	m.records[id] = rec
	return rec, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (m *AttendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byKey[keyOf(employeeID, date)]
	if !ok {
		return nil, nil
	}
	rec := m.records[id]
	return &rec, nil
}

func (m *AttendanceRepository) list(match func(attendance.Record) bool) []attendance.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []attendance.Record
	for _, rec := range m.records {
		if match(rec) {
			out = append(out, rec)
		}
	}
	slices.SortFunc(out, func(a, b attendance.Record) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		switch {
		case a.EmployeeID < b.EmployeeID:
			return -1
		case a.EmployeeID > b.EmployeeID:
			return 1
		}
		return 0
	})
	return out
}

// ListByEmployee implements attendance.AttendanceRepository.
func (m *AttendanceRepository) ListByEmployee(ctx context.Context, employeeID int64, r attendance.DateRange) ([]attendance.Record, error) {
	return m.list(func(rec attendance.Record) bool {
		return rec.EmployeeID == employeeID && r.Contains(rec.Date)
	}), nil
}

// ListByRange implements attendance.AttendanceRepository.
func (m *AttendanceRepository) ListByRange(ctx context.Context, r attendance.DateRange) ([]attendance.Record, error) {
	return m.list(func(rec attendance.Record) bool {
		return r.Contains(rec.Date)
	}), nil
}

// Delete implements attendance.AttendanceRepository.
func (m *AttendanceRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(m.records, id)
	delete(m.byKey, keyOf(rec.EmployeeID, rec.Date))
	return nil
}

// DeleteByEmployeeAndRange implements attendance.AttendanceRepository.
func (m *AttendanceRepository) DeleteByEmployeeAndRange(ctx context.Context, employeeID int64, r attendance.DateRange) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeConflict(); err != nil {
		return 0, err
	}

	var n int64
	for id, rec := range m.records {
		if rec.EmployeeID == employeeID && r.Contains(rec.Date) {
			delete(m.records, id)
			delete(m.byKey, keyOf(rec.EmployeeID, rec.Date))
			n++
		}
	}
	return n, nil
}

package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-portal/internal/domain/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceRepository_ParallelTransitions(t *testing.T) {
	repo := NewAttendanceRepository()
	ctx := context.Background()
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	in := day.Add(4 * time.Hour)

	var clockIns int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.ClockIn(ctx, 1, day, in); err == nil {
				atomic.AddInt32(&clockIns, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), clockIns)

	rec, err := repo.GetByEmployeeAndDate(ctx, 1, day)
	require.NoError(t, err)
	require.NotNil(t, rec)

	var clockOuts int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.ClockOut(ctx, rec.ID, in.Add(8*time.Hour), 8); err == nil {
				atomic.AddInt32(&clockOuts, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), clockOuts)
}

func TestAttendanceRepository_InjectConflicts(t *testing.T) {
	repo := NewAttendanceRepository()
	repo.InjectConflicts(1)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	_, err := repo.ClockIn(context.Background(), 1, day, day.Add(time.Hour))
	assert.ErrorIs(t, err, attendance.ErrStorageConflict)

	_, err = repo.ClockIn(context.Background(), 1, day, day.Add(time.Hour))
	assert.NoError(t, err)
}

func TestEmployeeRepository_DeleteCascades(t *testing.T) {
	records := NewAttendanceRepository()
	employees := NewEmployeeRepository(employee.Employee{ID: 1, Email: "a@example.com"}).CascadeTo(records)
	ctx := context.Background()

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	records.Seed(attendance.Record{EmployeeID: 1, Date: day, State: attendance.ClockedIn{InTime: day}})
	records.Seed(attendance.Record{EmployeeID: 2, Date: day, State: attendance.ClockedIn{InTime: day}})

	require.NoError(t, employees.Delete(ctx, 1))
	assert.Equal(t, 1, records.Count())
	assert.ErrorIs(t, employees.Delete(ctx, 1), employee.ErrEmployeeNotFound)
}

func TestEmployeeRepository_UniqueEmail(t *testing.T) {
	employees := NewEmployeeRepository(employee.Employee{ID: 1, Email: "a@example.com"})
	ctx := context.Background()

	_, err := employees.Create(ctx, employee.Employee{ID: 2, Email: "A@example.com"})
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	_, err = employees.Create(ctx, employee.Employee{ID: 2, Email: "b@example.com"})
	require.NoError(t, err)

	email := "a@example.com"
	assert.ErrorIs(t, employees.Update(ctx, 2, employee.UpdateEmployeeRequest{Email: &email}), employee.ErrEmailExists)
}

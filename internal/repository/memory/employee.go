package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-portal/internal/domain/employee"
)

type EmployeeRepository struct {
	mu        sync.Mutex
	employees map[int64]employee.Employee
	listErr   error

	// attendance mirrors the PostgreSQL foreign key: deleting an employee drops its records.
	attendance *AttendanceRepository
}

func NewEmployeeRepository(employees ...employee.Employee) *EmployeeRepository {
	m := &EmployeeRepository{employees: make(map[int64]employee.Employee)}
	for _, e := range employees {
		m.employees[e.ID] = e
	}
	return m
}

var _ employee.EmployeeRepository = (*EmployeeRepository)(nil)

// CascadeTo makes Delete also remove the employee's records from the given store.
func (m *EmployeeRepository) CascadeTo(records *AttendanceRepository) *EmployeeRepository {
	m.attendance = records
	return m
}

// FailList makes List return err until called again with nil.
func (m *EmployeeRepository) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// GetByID implements employee.EmployeeRepository.
func (m *EmployeeRepository) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// Exists implements employee.EmployeeRepository.
func (m *EmployeeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.employees[id]
	return ok, nil
}

// List implements employee.EmployeeRepository.
func (m *EmployeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	out := make([]employee.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b employee.Employee) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

func (m *EmployeeRepository) emailTaken(email string, except int64) bool {
	for id, e := range m.employees {
		if id != except && strings.EqualFold(e.Email, email) {
			return true
		}
	}
	return false
}

// Create implements employee.EmployeeRepository.
func (m *EmployeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[e.ID]; ok {
		return employee.Employee{}, employee.ErrEmployeeIDExists
	}
	if m.emailTaken(e.Email, e.ID) {
		return employee.Employee{}, employee.ErrEmailExists
	}

	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	m.employees[e.ID] = e
	return e, nil
}

// Update implements employee.EmployeeRepository.
func (m *EmployeeRepository) Update(ctx context.Context, id int64, req employee.UpdateEmployeeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}

	changed := false
	if req.Name != nil && *req.Name != "" {
		e.Name = *req.Name
		changed = true
	}
	if req.Email != nil && *req.Email != "" {
		if m.emailTaken(*req.Email, id) {
			return employee.ErrEmailExists
		}
		e.Email = *req.Email
		changed = true
	}
	if req.PasswordHash != nil && *req.PasswordHash != "" {
		e.PasswordHash = *req.PasswordHash
		changed = true
	}
	if !changed {
		return employee.ErrNoFieldsToUpdate
	}

	e.UpdatedAt = time.Now().UTC()
	m.employees[id] = e
	return nil
}

// UpdatePassword implements employee.EmployeeRepository.
func (m *EmployeeRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.PasswordHash = passwordHash
	e.UpdatedAt = time.Now().UTC()
	m.employees[id] = e
	return nil
}

// Delete implements employee.EmployeeRepository.
func (m *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	if _, ok := m.employees[id]; !ok {
		m.mu.Unlock()
		return employee.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	m.mu.Unlock()

	if m.attendance != nil {
		if _, err := m.attendance.DeleteByEmployeeAndRange(ctx, id, attendance.UnboundedRange()); err != nil {
			return err
		}
	}
	return nil
}

package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-portal/internal/domain/employee"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeServiceImpl struct {
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	bcryptCost     int
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository, attendanceRepo attendance.AttendanceRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		bcryptCost:     bcrypt.DefaultCost,
	}
}

func (s *EmployeeServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context) ([]employee.EmployeeResponse, error) {
	employees, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.NewEmployeeResponse(e))
	}
	return responses, nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		ID:           req.ID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeIDExists) || errors.Is(err, employee.ErrEmailExists) {
			return employee.EmployeeResponse{}, err
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to create employee: %w", err)
	}

	slog.Info("Employee created", "employee_id", created.ID)
	return employee.NewEmployeeResponse(created), nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	if req.Password != nil {
		hash, err := s.hashPassword(*req.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		req.PasswordHash = &hash
	}

	if err := s.employeeRepo.Update(ctx, req.ID, req); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) || errors.Is(err, employee.ErrEmailExists) {
			return err
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return nil
}

// DeleteEmployee implements employee.EmployeeService.
// PostgreSQL drops attendance through the foreign key; a separate attendance store is purged here.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id int64) error {
	if id <= 0 {
		return employee.ErrEmployeeNotFound
	}

	if err := s.employeeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	deleted, err := s.attendanceRepo.DeleteByEmployeeAndRange(ctx, id, attendance.UnboundedRange())
	if err != nil {
		slog.Error("Failed to purge attendance of deleted employee", "employee_id", id, "error", err)
		return fmt.Errorf("employee deleted but attendance purge failed: %w", err)
	}

	slog.Info("Employee deleted", "employee_id", id, "attendance_purged", deleted)
	return nil
}

package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// ListEmployees returns every employee ordered by id
	ListEmployees(ctx context.Context) ([]EmployeeResponse, error)

	// CreateEmployee registers a new employee with a hashed password
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	// UpdateEmployee changes name, email or password
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) error

	// DeleteEmployee removes the employee together with all attendance records
	DeleteEmployee(ctx context.Context, id int64) error
}

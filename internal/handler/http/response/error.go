package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-portal/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-portal/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-portal/internal/domain/location"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Location errors
	case errors.Is(err, location.ErrInvalidCoordinate):
		ValidationError(w, map[string]string{"location": err.Error()})
	case errors.Is(err, attendance.ErrLocationDenied):
		Forbidden(w, "You are not at an allowed location")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		BadRequest(w, "Attendance already marked for today", nil)
	case errors.Is(err, attendance.ErrNotClockedIn):
		BadRequest(w, "Please clock in first", nil)
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		BadRequest(w, "Exit time already marked for today", nil)
	case errors.Is(err, attendance.ErrInvalidTimeOrder):
		BadRequest(w, "Clock-out time must be after clock-in time", nil)
	case errors.Is(err, attendance.ErrInvalidFilter):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrStorageConflict):
		Conflict(w, "Attendance was modified concurrently, please retry")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeIDExists):
		Conflict(w, "Employee id already exists")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, employee.ErrNoFieldsToUpdate):
		BadRequest(w, "No fields to update", nil)

	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid credentials")
	case errors.Is(err, auth.ErrInvalidToken):
		BadRequest(w, "Invalid or expired token", nil)
	case errors.Is(err, auth.ErrInvalidTokenType):
		BadRequest(w, "Invalid token type", nil)
	case errors.Is(err, auth.ErrForbidden):
		Forbidden(w, "Insufficient permissions")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

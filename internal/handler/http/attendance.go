package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-portal/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-portal/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetEmployeeAttendance(w http.ResponseWriter, r *http.Request)
	DeleteEmployeeAttendance(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// clockBody uses pointers so a missing coordinate is reported instead of read as 0.
type clockBody struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func decodeClockRequest(r *http.Request) (attendance.ClockRequest, error) {
	employeeID, ok := middleware.EmployeeIDFromContext(r.Context())
	if !ok {
		return attendance.ClockRequest{}, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is missing from token"}}
	}

	var body clockBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return attendance.ClockRequest{}, err
	}

	var errs validator.ValidationErrors
	if body.Latitude == nil {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "latitude is required"})
	}
	if body.Longitude == nil {
		errs = append(errs, validator.ValidationError{Field: "longitude", Message: "longitude is required"})
	}
	if len(errs) > 0 {
		return attendance.ClockRequest{}, errs
	}

	return attendance.ClockRequest{
		EmployeeID: employeeID,
		Latitude:   *body.Latitude,
		Longitude:  *body.Longitude,
	}, nil
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	req, err := decodeClockRequest(r)
	if err != nil {
		h.handleDecodeError(w, "ClockIn", err)
		return
	}

	result, err := h.attendanceService.ClockIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	req, err := decodeClockRequest(r)
	if err != nil {
		h.handleDecodeError(w, "ClockOut", err)
		return
	}

	result, err := h.attendanceService.ClockOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := middleware.EmployeeIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Token does not identify an employee")
		return
	}
	h.queryEmployee(w, r, employeeID)
}

// GetEmployeeAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetEmployeeAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID, err := parseEmployeeID(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	h.queryEmployee(w, r, employeeID)
}

func (h *attendanceHandlerImpl) queryEmployee(w http.ResponseWriter, r *http.Request, employeeID int64) {
	filter, err := parseRangeFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	report, err := h.attendanceService.QueryEmployee(r.Context(), employeeID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance retrieved successfully", report)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRangeFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	report, err := h.attendanceService.QueryAll(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance retrieved successfully", report)
}

// DeleteEmployeeAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) DeleteEmployeeAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID, err := parseEmployeeID(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter, err := parseRangeFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.DeleteRange(r.Context(), employeeID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("Deleted %d attendance records", result.DeletedCount), result)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.attendanceService.DeleteAttendance(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance deleted successfully", nil)
}

func (h *attendanceHandlerImpl) handleDecodeError(w http.ResponseWriter, op string, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		response.HandleError(w, err)
		return
	}
	slog.Error(op+" decode error", "error", err)
	response.BadRequest(w, "Invalid request format", nil)
}

func parseEmployeeID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "employeeID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id must be a positive integer"}}
	}
	return id, nil
}

// parseRangeFilter reads filter, date, start_date, end_date, month and year from the query string.
func parseRangeFilter(r *http.Request) (attendance.RangeFilter, error) {
	q := r.URL.Query()

	optional := func(key string) *string {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			return nil
		}
		return &v
	}
	optionalInt := func(key string) (*int, error) {
		v := optional(key)
		if v == nil {
			return nil, nil
		}
		n, err := strconv.Atoi(*v)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer: %w", key, attendance.ErrInvalidFilter)
		}
		return &n, nil
	}

	filter := attendance.RangeFilter{
		Preset:    strings.ToLower(strings.TrimSpace(q.Get("filter"))),
		Date:      optional("date"),
		StartDate: optional("start_date"),
		EndDate:   optional("end_date"),
	}

	var err error
	if filter.Month, err = optionalInt("month"); err != nil {
		return attendance.RangeFilter{}, err
	}
	if filter.Year, err = optionalInt("year"); err != nil {
		return attendance.RangeFilter{}, err
	}

	return filter, nil
}

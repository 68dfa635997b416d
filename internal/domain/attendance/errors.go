package attendance

import "errors"

// Attendance domain errors
var (
	// Clock-in / clock-out errors
	ErrLocationDenied    = errors.New("you are not at an allowed location")
	ErrAlreadyClockedIn  = errors.New("attendance already marked for today")
	ErrNotClockedIn      = errors.New("please clock in first")
	ErrAlreadyClockedOut = errors.New("exit time already marked for today")
	ErrInvalidTimeOrder  = errors.New("clock-out time must be after clock-in time")

	// Query errors
	ErrInvalidFilter = errors.New("invalid filter")

	// Storage errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrStorageConflict    = errors.New("attendance storage conflict, please retry")

	// ErrTransitionRejected is returned by repositories when a conditional update matched no record.
	// The service re-reads the record to decide which user-facing error applies.
	ErrTransitionRejected = errors.New("attendance record is not in the expected state")
)

package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// Mark records attendance, updating the existing record when the worker
	// was already marked for that date.
	Mark(ctx context.Context, req MarkAttendanceRequest) (Attendance, error)

	// Get retrieves a single attendance record by ID
	Get(ctx context.Context, id string) (Attendance, error)

	// List retrieves attendance records with filters. Date defaults to today.
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)
}

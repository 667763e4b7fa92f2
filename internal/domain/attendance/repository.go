package attendance

import (
	"context"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	store.Capability[Attendance]

	// GetByWorkerAndDate returns nil, nil when the worker has no mark for the date.
	// Used to keep one record per worker per day.
	GetByWorkerAndDate(ctx context.Context, workerID string, date string) (*Attendance, error)

	// List retrieves attendance records ordered by worker name
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)
}

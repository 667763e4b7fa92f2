package attendance

import (
	"fmt"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
)

// Attendance domain errors
var (
	ErrAttendanceNotFound = fmt.Errorf("attendance record %w", store.ErrNotFound)
	ErrWorkerNotFound     = fmt.Errorf("worker %w", store.ErrNotFound)
	ErrProjectNotFound    = fmt.Errorf("project %w", store.ErrNotFound)
)

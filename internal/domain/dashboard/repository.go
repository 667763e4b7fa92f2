package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// WorkerStats combines worker counts in single query
type WorkerStats struct {
	Total  int64
	Active int64
}

// DashboardRepository defines the interface for dashboard data access
type DashboardRepository interface {
	// GetWorkerStats returns total and active worker counts; soft-deleted workers are excluded
	GetWorkerStats(ctx context.Context) (*WorkerStats, error)

	// GetAttendanceStatsByDay returns full/half/absent counts for a day
	GetAttendanceStatsByDay(ctx context.Context, date time.Time) (*AttendanceStats, error)

	// CountUnpaidPayments returns the number of payments still marked unpaid
	CountUnpaidPayments(ctx context.Context) (int64, error)

	// SumWagePayments sums wage payments dated within [from, to]
	SumWagePayments(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

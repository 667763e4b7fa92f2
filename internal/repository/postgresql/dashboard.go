package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// GetWorkerStats returns total and active workers in single query
func (r *dashboardRepositoryImpl) GetWorkerStats(ctx context.Context) (*dashboard.WorkerStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) as active_count
		FROM workers
		WHERE deleted_at IS NULL
	`

	var stats dashboard.WorkerStats
	if err := q.QueryRow(ctx, query).Scan(&stats.Total, &stats.Active); err != nil {
		return nil, fmt.Errorf("failed to get worker stats: %w", err)
	}
	return &stats, nil
}

// GetAttendanceStatsByDay returns full/half/absent for a day in single query
func (r *dashboardRepositoryImpl) GetAttendanceStatsByDay(ctx context.Context, date time.Time) (*dashboard.AttendanceStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'full' THEN 1 ELSE 0 END), 0) as full_count,
			COALESCE(SUM(CASE WHEN status = 'half' THEN 1 ELSE 0 END), 0) as half_count,
			COALESCE(SUM(CASE WHEN status = 'absent' THEN 1 ELSE 0 END), 0) as absent_count
		FROM attendance
		WHERE attendance_date = $1::date AND is_active = TRUE
	`

	var stats dashboard.AttendanceStats
	if err := q.QueryRow(ctx, query, date.Format("2006-01-02")).Scan(&stats.Full, &stats.Half, &stats.Absent); err != nil {
		return nil, fmt.Errorf("failed to get attendance stats: %w", err)
	}
	return &stats, nil
}

// CountUnpaidPayments implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) CountUnpaidPayments(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE status = 'unpaid' AND is_active = TRUE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unpaid payments: %w", err)
	}
	return count, nil
}

// SumWagePayments implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) SumWagePayments(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE payment_type = 'wage' AND is_active = TRUE
		  AND payment_date BETWEEN $1::date AND $2::date
	`

	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, from.Format("2006-01-02"), to.Format("2006-01-02")).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum wage payments: %w", err)
	}
	return total, nil
}

package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/dashboard"
	"github.com/shopspring/decimal"
)

type dashboardRepository struct {
	db *DB
}

func NewDashboardRepository(db *DB) dashboard.DashboardRepository {
	return &dashboardRepository{db: db}
}

// GetWorkerStats implements dashboard.DashboardRepository.
func (r *dashboardRepository) GetWorkerStats(ctx context.Context) (*dashboard.WorkerStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_active = 1 THEN 1 ELSE 0 END), 0)
		FROM workers
		WHERE deleted_at IS NULL
	`
	var stats dashboard.WorkerStats
	if err := q.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Active); err != nil {
		return nil, fmt.Errorf("failed to get worker stats: %w", err)
	}
	return &stats, nil
}

// GetAttendanceStatsByDay implements dashboard.DashboardRepository.
func (r *dashboardRepository) GetAttendanceStatsByDay(ctx context.Context, date time.Time) (*dashboard.AttendanceStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'full' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'half' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'absent' THEN 1 ELSE 0 END), 0)
		FROM attendance
		WHERE attendance_date = ? AND is_active = 1
	`
	var stats dashboard.AttendanceStats
	if err := q.QueryRowContext(ctx, query, date.Format("2006-01-02")).Scan(&stats.Full, &stats.Half, &stats.Absent); err != nil {
		return nil, fmt.Errorf("failed to get attendance stats: %w", err)
	}
	return &stats, nil
}

// CountUnpaidPayments implements dashboard.DashboardRepository.
func (r *dashboardRepository) CountUnpaidPayments(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments WHERE status = 'unpaid' AND is_active = 1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unpaid payments: %w", err)
	}
	return count, nil
}

// SumWagePayments implements dashboard.DashboardRepository.
// Amounts are stored as text and summed as decimals.
func (r *dashboardRepository) SumWagePayments(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, `
		SELECT amount FROM payments
		WHERE payment_type = 'wage' AND is_active = 1 AND payment_date BETWEEN ? AND ?
	`, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum wage payments: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan wage payment: %w", err)
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}

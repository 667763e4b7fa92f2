package dashboard

import (
	"context"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/dashboard"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	now func() time.Time
}

func NewDashboardService(repo dashboard.DashboardRepository) dashboard.DashboardService {
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		now:                 time.Now,
	}
}

// monthBounds returns the first and last day of t's month
func monthBounds(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first, first.AddDate(0, 1, -1)
}

// GetDashboard returns combined dashboard data using parallel goroutines, one query each
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context) (*dashboard.DashboardResponse, error) {
	now := s.now()
	monthStart, monthEnd := monthBounds(now)

	var (
		workerStats *dashboard.WorkerStats
		attendance  *dashboard.AttendanceStats
		unpaid      int64
		wages       decimal.Decimal
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Worker counts
	g.Go(func() error {
		stats, err := s.GetWorkerStats(gCtx)
		if err != nil {
			return err
		}
		workerStats = stats
		return nil
	})

	// 2. Today's attendance
	g.Go(func() error {
		stats, err := s.GetAttendanceStatsByDay(gCtx, now)
		if err != nil {
			return err
		}
		attendance = stats
		return nil
	})

	// 3. Unpaid payments
	g.Go(func() error {
		count, err := s.CountUnpaidPayments(gCtx)
		if err != nil {
			return err
		}
		unpaid = count
		return nil
	})

	// 4. Wages paid out this month
	g.Go(func() error {
		sum, err := s.SumWagePayments(gCtx, monthStart, monthEnd)
		if err != nil {
			return err
		}
		wages = sum
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dashboard.DashboardResponse{
		TotalWorkers:       workerStats.Total,
		ActiveWorkers:      workerStats.Active,
		TodayAttendance:    attendance.Full + attendance.Half,
		PendingPayments:    unpaid,
		ThisMonthWages:     wages,
		AttendanceByStatus: *attendance,
		Date:               now.Format("2006-01-02"),
	}, nil
}

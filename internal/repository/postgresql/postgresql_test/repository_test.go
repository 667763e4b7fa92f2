package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/attendance"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/payment"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
	"github.com/cmlabs-hris/sitecrew-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func createProject(t *testing.T, repo project.ProjectRepository) project.Project {
	t.Helper()
	p, err := repo.Create(context.Background(), project.Project{Name: "Tower B", Status: project.StatusActive, IsActive: true})
	require.NoError(t, err)
	return p
}

func createWorker(t *testing.T, repo worker.WorkerRepository, projectID string) worker.Worker {
	t.Helper()
	w, err := repo.Create(context.Background(), worker.Worker{
		Name:       "Ravi",
		LabourType: worker.LabourTypeMason,
		DailyWage:  decimal.NewFromInt(500),
		ProjectID:  &projectID,
		IsActive:   true,
	})
	require.NoError(t, err)
	return w
}

func TestWorkerRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	projects := postgresql.NewProjectRepository(setup.DB)
	workers := postgresql.NewWorkerRepository(setup.DB)

	p := createProject(t, projects)
	w := createWorker(t, workers, p.ID)
	assert.NotEmpty(t, w.ID)
	require.NotNil(t, w.ProjectName)
	assert.Equal(t, "Tower B", *w.ProjectName)

	w.DailyWage = decimal.RequireFromString("650.50")
	updated, err := workers.Update(ctx, w)
	require.NoError(t, err)
	assert.True(t, updated.DailyWage.Equal(decimal.RequireFromString("650.50")))
	assert.NotNil(t, updated.UpdatedAt)

	list, err := workers.List(ctx, worker.WorkerFilter{ProjectID: &p.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = workers.GetByID(ctx, "not-a-uuid")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = workers.GetByID(ctx, "0190f0a8-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, worker.ErrWorkerNotFound)
}

func TestAttendanceRepository_WorkerDateLookup(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	p := createProject(t, postgresql.NewProjectRepository(setup.DB))
	w := createWorker(t, postgresql.NewWorkerRepository(setup.DB), p.ID)
	repo := postgresql.NewAttendanceRepository(setup.DB)

	created, err := repo.Create(ctx, attendance.Attendance{
		WorkerID: w.ID, ProjectID: p.ID, AttendanceDate: "2024-01-05", Status: attendance.StatusFull, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", created.AttendanceDate)

	found, err := repo.GetByWorkerAndDate(ctx, w.ID, "2024-01-05")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	found.Status = attendance.StatusHalf
	updated, err := repo.Update(ctx, *found)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusHalf, updated.Status)

	date := "2024-01-05"
	records, err := repo.List(ctx, attendance.AttendanceFilter{Date: &date})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAttendanceRepository_CreateSameDayUpserts(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	p := createProject(t, postgresql.NewProjectRepository(setup.DB))
	w := createWorker(t, postgresql.NewWorkerRepository(setup.DB), p.ID)
	repo := postgresql.NewAttendanceRepository(setup.DB)

	first, err := repo.Create(ctx, attendance.Attendance{
		WorkerID: w.ID, ProjectID: p.ID, AttendanceDate: "2024-01-06", Status: attendance.StatusFull, IsActive: true,
	})
	require.NoError(t, err)

	second, err := repo.Create(ctx, attendance.Attendance{
		WorkerID: w.ID, ProjectID: p.ID, AttendanceDate: "2024-01-06", Status: attendance.StatusHalf, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, attendance.StatusHalf, second.Status)

	// Devices racing on the same worker and day
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := repo.Create(gctx, attendance.Attendance{
				WorkerID: w.ID, ProjectID: p.ID, AttendanceDate: "2024-01-07", Status: attendance.StatusFull, IsActive: true,
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	date := "2024-01-07"
	records, err := repo.List(ctx, attendance.AttendanceFilter{Date: &date})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestPaymentAndDashboardRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	p := createProject(t, postgresql.NewProjectRepository(setup.DB))
	w := createWorker(t, postgresql.NewWorkerRepository(setup.DB), p.ID)
	repo := postgresql.NewPaymentRepository(setup.DB)

	today := time.Now().Format("2006-01-02")
	created, err := repo.Create(ctx, payment.Payment{
		WorkerID: w.ID, ProjectID: p.ID, PaymentDate: today, Amount: decimal.RequireFromString("1500.75"),
		PaymentType: payment.TypeWage, Status: payment.StatusUnpaid, IsActive: true,
	})
	require.NoError(t, err)
	assert.True(t, created.Amount.Equal(decimal.RequireFromString("1500.75")))

	dash := postgresql.NewDashboardRepository(setup.DB)
	unpaid, err := dash.CountUnpaidPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unpaid)

	now := time.Now()
	sum, err := dash.SumWagePayments(ctx, now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("1500.75")))

	created.Status = payment.StatusPaid
	_, err = repo.Update(ctx, created)
	require.NoError(t, err)

	unpaid, err = dash.CountUnpaidPayments(ctx)
	require.NoError(t, err)
	assert.Zero(t, unpaid)
}

func TestWithTransaction_RollsBackRepositoryWrites(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	projects := postgresql.NewProjectRepository(setup.DB)

	errAbort := errors.New("abort")
	err := postgresql.WithTransaction(ctx, setup.DB, func(ctx context.Context) error {
		_, err := projects.Create(ctx, project.Project{Name: "Phantom", Status: project.StatusActive, IsActive: true})
		require.NoError(t, err)
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	err = postgresql.WithTransaction(ctx, setup.DB, func(ctx context.Context) error {
		_, err := projects.Create(ctx, project.Project{Name: "Tower C", Status: project.StatusActive, IsActive: true})
		return err
	})
	require.NoError(t, err)

	all, err := projects.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Tower C", all[0].Name)
}

package worker_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/validator"
	"github.com/cmlabs-hris/sitecrew-go/internal/repository/sqlite"
	workerService "github.com/cmlabs-hris/sitecrew-go/internal/service/worker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSyncer struct {
	synced []store.Record
	err    error
}

func (s *recordingSyncer) SyncEntity(_ context.Context, record store.Record) error {
	s.synced = append(s.synced, record)
	return s.err
}

func setup(t *testing.T) (worker.WorkerService, sqlite.ProjectRepository, *recordingSyncer) {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	projects := sqlite.NewProjectRepository(db)
	syncer := &recordingSyncer{}
	return workerService.NewWorkerService(sqlite.NewWorkerRepository(db), projects, syncer), projects, syncer
}

func validRequest() worker.CreateWorkerRequest {
	return worker.CreateWorkerRequest{
		Name:       "Ravi Kumar",
		LabourType: string(worker.LabourTypeMason),
		DailyWage:  decimal.NewFromInt(650),
	}
}

func TestWorkerService_Create(t *testing.T) {
	svc, _, syncer := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)
	require.Len(t, syncer.synced, 1)
	assert.Equal(t, created.ID, syncer.synced[0].Key())
}

func TestWorkerService_CreateRejectsInvalidInput(t *testing.T) {
	svc, _, syncer := setup(t)

	req := validRequest()
	req.Name = " "
	req.DailyWage = decimal.Zero
	phone := "12345"
	req.PhoneNumber = &phone

	_, err := svc.Create(context.Background(), req)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := verrs.ToMap()
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "daily_wage")
	assert.Contains(t, fields, "phone_number")
	assert.Empty(t, syncer.synced)
}

func TestWorkerService_CreateChecksProject(t *testing.T) {
	svc, projects, _ := setup(t)
	ctx := context.Background()

	req := validRequest()
	missing := "no-such-project"
	req.ProjectID = &missing
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, worker.ErrProjectNotFound)

	site, err := projects.Create(ctx, project.Project{Name: "Tower B", Status: project.StatusActive, IsActive: true})
	require.NoError(t, err)
	req.ProjectID = &site.ID
	created, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, site.ID, *created.ProjectID)
}

func TestWorkerService_SyncFailureStillReturnsRecord(t *testing.T) {
	svc, _, syncer := setup(t)
	syncer.err = errors.New("disk full")

	created, err := svc.Create(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to sync worker")
	assert.NotEmpty(t, created.ID)
}

func TestWorkerService_Deactivate(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)
	assert.NotNil(t, deactivated.DeletedAt)

	_, err = svc.Deactivate(ctx, created.ID)
	assert.ErrorIs(t, err, worker.ErrWorkerInactive)

	active, err := svc.List(ctx, worker.WorkerFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = svc.Deactivate(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWorkerService_Update(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	req := worker.UpdateWorkerRequest{ID: created.ID, CreateWorkerRequest: validRequest()}
	req.DailyWage = decimal.NewFromInt(700)
	updated, err := svc.Update(ctx, req)
	require.NoError(t, err)
	assert.True(t, updated.DailyWage.Equal(decimal.NewFromInt(700)))

	req.ID = "missing"
	_, err = svc.Update(ctx, req)
	assert.ErrorIs(t, err, worker.ErrWorkerNotFound)
}

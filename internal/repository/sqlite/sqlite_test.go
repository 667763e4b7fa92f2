package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
	"github.com/cmlabs-hris/sitecrew-go/internal/repository/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) (*sqlite.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "agent.db")
	db, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func seedProject(t *testing.T, db *sqlite.DB) project.Project {
	t.Helper()

	location := "Whitefield, Bengaluru"
	p, err := sqlite.NewProjectRepository(db).Create(context.Background(), project.Project{
		Name:     "Tower B",
		Location: &location,
		Status:   project.StatusActive,
		IsActive: true,
	})
	require.NoError(t, err)
	return p
}

func seedWorker(t *testing.T, db *sqlite.DB, name string, projectID *string) worker.Worker {
	t.Helper()

	w, err := sqlite.NewWorkerRepository(db).Create(context.Background(), worker.Worker{
		Name:       name,
		LabourType: worker.LabourTypeMason,
		DailyWage:  decimal.NewFromInt(500),
		ProjectID:  projectID,
		IsActive:   true,
	})
	require.NoError(t, err)
	return w
}

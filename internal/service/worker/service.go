package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
)

type WorkerServiceImpl struct {
	workerRepo  worker.WorkerRepository
	projectRepo project.ProjectRepository
	syncer      store.Syncer
}

func NewWorkerService(
	workerRepo worker.WorkerRepository,
	projectRepo project.ProjectRepository,
	syncer store.Syncer,
) worker.WorkerService {
	if syncer == nil {
		syncer = store.NopSyncer{}
	}
	return &WorkerServiceImpl{
		workerRepo:  workerRepo,
		projectRepo: projectRepo,
		syncer:      syncer,
	}
}

// Create implements worker.WorkerService.
func (s *WorkerServiceImpl) Create(ctx context.Context, req worker.CreateWorkerRequest) (worker.Worker, error) {
	if err := req.Validate(); err != nil {
		return worker.Worker{}, err
	}

	w := req.Apply(worker.Worker{})
	if err := s.checkProject(ctx, w.ProjectID); err != nil {
		return worker.Worker{}, err
	}

	created, err := s.workerRepo.Create(ctx, w)
	if err != nil {
		return worker.Worker{}, fmt.Errorf("failed to create worker: %w", err)
	}

	slog.Info("worker created", "worker_id", created.ID, "labour_type", created.LabourType)

	if err := s.syncer.SyncEntity(ctx, created); err != nil {
		return created, fmt.Errorf("failed to sync worker: %w", err)
	}
	return created, nil
}

// Update implements worker.WorkerService.
func (s *WorkerServiceImpl) Update(ctx context.Context, req worker.UpdateWorkerRequest) (worker.Worker, error) {
	if err := req.Validate(); err != nil {
		return worker.Worker{}, err
	}

	existing, err := s.Get(ctx, req.ID)
	if err != nil {
		return worker.Worker{}, err
	}

	w := req.Apply(existing)
	if err := s.checkProject(ctx, w.ProjectID); err != nil {
		return worker.Worker{}, err
	}
	if w.IsActive {
		w.DeletedAt = nil
	}

	updated, err := s.workerRepo.Update(ctx, w)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return worker.Worker{}, worker.ErrWorkerNotFound
		}
		return worker.Worker{}, fmt.Errorf("failed to update worker: %w", err)
	}

	if err := s.syncer.SyncEntity(ctx, updated); err != nil {
		return updated, fmt.Errorf("failed to sync worker: %w", err)
	}
	return updated, nil
}

// Get implements worker.WorkerService.
func (s *WorkerServiceImpl) Get(ctx context.Context, id string) (worker.Worker, error) {
	w, err := s.workerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return worker.Worker{}, worker.ErrWorkerNotFound
		}
		return worker.Worker{}, fmt.Errorf("failed to get worker: %w", err)
	}
	return w, nil
}

// List implements worker.WorkerService.
func (s *WorkerServiceImpl) List(ctx context.Context, filter worker.WorkerFilter) ([]worker.Worker, error) {
	workers, err := s.workerRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	return workers, nil
}

// Deactivate implements worker.WorkerService.
func (s *WorkerServiceImpl) Deactivate(ctx context.Context, id string) (worker.Worker, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return worker.Worker{}, err
	}
	if !w.IsActive {
		return worker.Worker{}, worker.ErrWorkerInactive
	}

	now := time.Now().UTC()
	w.IsActive = false
	w.DeletedAt = &now

	updated, err := s.workerRepo.Update(ctx, w)
	if err != nil {
		return worker.Worker{}, fmt.Errorf("failed to deactivate worker: %w", err)
	}

	slog.Info("worker deactivated", "worker_id", updated.ID)

	if err := s.syncer.SyncEntity(ctx, updated); err != nil {
		return updated, fmt.Errorf("failed to sync worker: %w", err)
	}
	return updated, nil
}

func (s *WorkerServiceImpl) checkProject(ctx context.Context, projectID *string) error {
	if projectID == nil {
		return nil
	}
	if _, err := s.projectRepo.GetByID(ctx, *projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return worker.ErrProjectNotFound
		}
		return fmt.Errorf("failed to get project: %w", err)
	}
	return nil
}

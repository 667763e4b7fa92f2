package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
)

type ProjectServiceImpl struct {
	project.ProjectRepository
	syncer store.Syncer
}

func NewProjectService(repo project.ProjectRepository, syncer store.Syncer) project.ProjectService {
	if syncer == nil {
		syncer = store.NopSyncer{}
	}
	return &ProjectServiceImpl{
		ProjectRepository: repo,
		syncer:            syncer,
	}
}

// Create implements project.ProjectService.
func (s *ProjectServiceImpl) Create(ctx context.Context, req project.CreateProjectRequest) (project.Project, error) {
	if err := req.Validate(); err != nil {
		return project.Project{}, err
	}

	created, err := s.ProjectRepository.Create(ctx, req.Apply(project.Project{}))
	if err != nil {
		return project.Project{}, fmt.Errorf("failed to create project: %w", err)
	}

	slog.Info("project created", "project_id", created.ID, "name", created.Name)

	if err := s.syncer.SyncEntity(ctx, created); err != nil {
		return created, fmt.Errorf("failed to sync project: %w", err)
	}
	return created, nil
}

// Update implements project.ProjectService.
func (s *ProjectServiceImpl) Update(ctx context.Context, req project.UpdateProjectRequest) (project.Project, error) {
	if err := req.Validate(); err != nil {
		return project.Project{}, err
	}

	existing, err := s.Get(ctx, req.ID)
	if err != nil {
		return project.Project{}, err
	}

	p := req.Apply(existing)
	if p.IsActive {
		p.DeletedAt = nil
	}

	return s.save(ctx, p)
}

// Get implements project.ProjectService.
func (s *ProjectServiceImpl) Get(ctx context.Context, id string) (project.Project, error) {
	p, err := s.ProjectRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return project.Project{}, project.ErrProjectNotFound
		}
		return project.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// List implements project.ProjectService.
func (s *ProjectServiceImpl) List(ctx context.Context, includeInactive bool) ([]project.Project, error) {
	projects, err := s.ProjectRepository.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if includeInactive {
		return projects, nil
	}

	active := make([]project.Project, 0, len(projects))
	for _, p := range projects {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

// Deactivate implements project.ProjectService.
func (s *ProjectServiceImpl) Deactivate(ctx context.Context, id string) (project.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return project.Project{}, err
	}

	now := time.Now().UTC()
	p.IsActive = false
	p.Status = project.StatusInactive
	p.DeletedAt = &now

	return s.save(ctx, p)
}

func (s *ProjectServiceImpl) save(ctx context.Context, p project.Project) (project.Project, error) {
	updated, err := s.ProjectRepository.Update(ctx, p)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return project.Project{}, project.ErrProjectNotFound
		}
		return project.Project{}, fmt.Errorf("failed to update project: %w", err)
	}

	if err := s.syncer.SyncEntity(ctx, updated); err != nil {
		return updated, fmt.Errorf("failed to sync project: %w", err)
	}
	return updated, nil
}

package project

import "context"

// ProjectService defines business logic for project operations
type ProjectService interface {
	Create(ctx context.Context, req CreateProjectRequest) (Project, error)
	Update(ctx context.Context, req UpdateProjectRequest) (Project, error)
	Get(ctx context.Context, id string) (Project, error)

	// List returns projects, newest first. Soft-deleted projects are skipped unless includeInactive.
	List(ctx context.Context, includeInactive bool) ([]Project, error)

	// Deactivate soft deletes the project
	Deactivate(ctx context.Context, id string) (Project, error)
}

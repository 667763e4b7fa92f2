package worker

import "context"

// WorkerService defines business logic for worker operations
type WorkerService interface {
	Create(ctx context.Context, req CreateWorkerRequest) (Worker, error)

	// Update replaces every editable field of the worker
	Update(ctx context.Context, req UpdateWorkerRequest) (Worker, error)

	Get(ctx context.Context, id string) (Worker, error)
	List(ctx context.Context, filter WorkerFilter) ([]Worker, error)

	// Deactivate soft deletes the worker
	Deactivate(ctx context.Context, id string) (Worker, error)
}

package worker

import (
	"context"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
)

// WorkerRepository defines data access methods for workers.
type WorkerRepository interface {
	store.Capability[Worker]

	// List returns active workers, newest first, optionally filtered by project
	List(ctx context.Context, filter WorkerFilter) ([]Worker, error)
}

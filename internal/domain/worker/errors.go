package worker

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
)

// Worker domain errors
var (
	ErrWorkerNotFound  = fmt.Errorf("worker %w", store.ErrNotFound)
	ErrWorkerInactive  = errors.New("worker is no longer active")
	ErrProjectNotFound = fmt.Errorf("assigned project %w", store.ErrNotFound)
)

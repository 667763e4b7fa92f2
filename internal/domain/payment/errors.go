package payment

import (
	"fmt"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
)

// Payment domain errors
var (
	ErrPaymentNotFound = fmt.Errorf("payment %w", store.ErrNotFound)
	ErrWorkerNotFound  = fmt.Errorf("worker %w", store.ErrNotFound)
)

package project

import (
	"fmt"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
)

// Project domain errors
var (
	ErrProjectNotFound = fmt.Errorf("project %w", store.ErrNotFound)
)

package project

import "github.com/cmlabs-hris/sitecrew-go/internal/domain/store"

// ProjectRepository defines data access methods for projects.
// GetAll returns every project, newest first; inactive ones are filtered by the service.
type ProjectRepository interface {
	store.Capability[Project]
}

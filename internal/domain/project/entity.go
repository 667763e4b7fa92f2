package project

import (
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/validator"
)

// Status enum
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusCompleted Status = "completed"
)

var Statuses = []string{string(StatusActive), string(StatusInactive), string(StatusCompleted)}

// Project is a work site.
type Project struct {
	ID        string     `json:"id"`
	RemoteID  *string    `json:"remote_id,omitempty"`
	Name      string     `json:"name"`
	Location  *string    `json:"location,omitempty"`
	Status    Status     `json:"status"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (p Project) Kind() store.Kind { return store.KindProject }

func (p Project) Key() string { return p.ID }

func (p Project) RemoteKey() string {
	if p.RemoteID == nil {
		return ""
	}
	return *p.RemoteID
}

func (p Project) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(p.Name) {
		errs.Add("name", "name is required")
	}

	if !validator.IsInSlice(string(p.Status), Statuses) {
		errs.Add("status", "status must be one of: active, inactive, completed")
	}

	return errs.Err()
}

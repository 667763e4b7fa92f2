package project

// ========================================
// PROJECT DTOs
// ========================================

type CreateProjectRequest struct {
	Name     string  `json:"name"`
	Location *string `json:"location,omitempty"`
	Status   string  `json:"status,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (r *CreateProjectRequest) Validate() error {
	p := r.Apply(Project{})
	return p.Validate()
}

// Apply copies the request fields onto p. Status defaults to active.
func (r *CreateProjectRequest) Apply(p Project) Project {
	p.Name = r.Name
	p.Location = r.Location
	if r.Location != nil && *r.Location == "" {
		p.Location = nil
	}
	p.Status = Status(r.Status)
	if r.Status == "" {
		p.Status = StatusActive
	}
	p.IsActive = true
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p
}

type UpdateProjectRequest struct {
	ID string `json:"-"`
	CreateProjectRequest
}

func (r *UpdateProjectRequest) Validate() error {
	return r.CreateProjectRequest.Validate()
}

// FromProject builds the request that reproduces p.
func FromProject(p Project) CreateProjectRequest {
	active := p.IsActive
	return CreateProjectRequest{
		Name:     p.Name,
		Location: p.Location,
		Status:   string(p.Status),
		IsActive: &active,
	}
}

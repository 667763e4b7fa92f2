package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/database"
)

type projectRepository struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) project.ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, name, location, status, is_active, created_at, updated_at, deleted_at`

func scanProject(row interface{ Scan(...any) error }) (project.Project, error) {
	var p project.Project
	err := row.Scan(&p.ID, &p.Name, &p.Location, &p.Status, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	return p, err
}

// Create implements project.ProjectRepository.
func (r *projectRepository) Create(ctx context.Context, p project.Project) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO projects (name, location, status, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + projectColumns

	created, err := scanProject(q.QueryRow(ctx, query, p.Name, p.Location, p.Status, p.IsActive))
	if err != nil {
		return project.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return created, nil
}

// Update implements project.ProjectRepository.
func (r *projectRepository) Update(ctx context.Context, p project.Project) (project.Project, error) {
	if !validID(p.ID) {
		return project.Project{}, project.ErrProjectNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE projects
		SET name = $1, location = $2, status = $3, is_active = $4, deleted_at = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + projectColumns

	updated, err := scanProject(q.QueryRow(ctx, query, p.Name, p.Location, p.Status, p.IsActive, p.DeletedAt, p.ID))
	if err != nil {
		if isNoRows(err) {
			return project.Project{}, project.ErrProjectNotFound
		}
		return project.Project{}, fmt.Errorf("failed to update project: %w", err)
	}
	return updated, nil
}

// GetAll implements project.ProjectRepository.
func (r *projectRepository) GetAll(ctx context.Context) ([]project.Project, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetByID implements project.ProjectRepository.
func (r *projectRepository) GetByID(ctx context.Context, id string) (project.Project, error) {
	if !validID(id) {
		return project.Project{}, project.ErrProjectNotFound
	}
	q := GetQuerier(ctx, r.db)

	p, err := scanProject(q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return project.Project{}, project.ErrProjectNotFound
		}
		return project.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

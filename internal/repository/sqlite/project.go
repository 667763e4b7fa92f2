package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/google/uuid"
)

type projectRepository struct {
	db *DB
}

// ProjectRepository is the local project store. It also satisfies store.LocalCapability.
type ProjectRepository interface {
	project.ProjectRepository
	store.LocalCapability[project.Project]
}

func NewProjectRepository(db *DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, remote_id, name, location, status, is_active, created_at, updated_at, deleted_at`

func scanProject(row interface{ Scan(...any) error }) (project.Project, error) {
	var (
		p        project.Project
		remoteID sql.NullString
		location sql.NullString
		ts       timestamps
		err      error
	)
	if err = row.Scan(&p.ID, &remoteID, &p.Name, &location, &p.Status, &p.IsActive, &ts.createdAt, &ts.updatedAt, &ts.deletedAt); err != nil {
		return project.Project{}, err
	}
	p.RemoteID = stringPtr(remoteID)
	p.Location = stringPtr(location)
	if p.CreatedAt, p.UpdatedAt, p.DeletedAt, err = ts.parse(); err != nil {
		return project.Project{}, err
	}
	return p, nil
}

// Create implements project.ProjectRepository.
func (r *projectRepository) Create(ctx context.Context, p project.Project) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	if p.ID == "" {
		p.ID = uuid.Must(uuid.NewV7()).String()
	}
	p.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO projects (id, remote_id, name, location, status, is_active, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		p.ID, nullable(p.RemoteID), p.Name, nullable(p.Location), p.Status, p.IsActive,
		formatTime(p.CreatedAt), formatTimePtr(p.DeletedAt),
	)
	if err != nil {
		return project.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// Update implements project.ProjectRepository.
func (r *projectRepository) Update(ctx context.Context, p project.Project) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	now := time.Now().UTC()
	p.UpdatedAt = &now

	query := `
		UPDATE projects
		SET name = ?, location = ?, status = ?, is_active = ?, updated_at = ?, deleted_at = ?
		WHERE id = ?
	`
	res, err := q.ExecContext(ctx, query,
		p.Name, nullable(p.Location), p.Status, p.IsActive, formatTime(now), formatTimePtr(p.DeletedAt), p.ID,
	)
	if err != nil {
		return project.Project{}, fmt.Errorf("failed to update project: %w", err)
	}
	if err := checkAffected(res, project.ErrProjectNotFound); err != nil {
		return project.Project{}, err
	}
	return r.GetByID(ctx, p.ID)
}

// GetAll implements project.ProjectRepository.
func (r *projectRepository) GetAll(ctx context.Context) ([]project.Project, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
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
	q := GetQuerier(ctx, r.db)

	p, err := scanProject(q.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if err != nil {
		if isNoRows(err) {
			return project.Project{}, project.ErrProjectNotFound
		}
		return project.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// SetRemoteID implements store.LocalCapability.
func (r *projectRepository) SetRemoteID(ctx context.Context, localID string, remoteID string) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `UPDATE projects SET remote_id = ? WHERE id = ?`, remoteID, localID)
	if err != nil {
		return fmt.Errorf("failed to set project remote id: %w", err)
	}
	return checkAffected(res, project.ErrProjectNotFound)
}

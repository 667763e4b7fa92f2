package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type workerRepository struct {
	db *DB
}

// WorkerRepository is the local worker store. It also satisfies store.LocalCapability.
type WorkerRepository interface {
	worker.WorkerRepository
	store.LocalCapability[worker.Worker]
}

func NewWorkerRepository(db *DB) WorkerRepository {
	return &workerRepository{db: db}
}

const workerSelect = `
	SELECT w.id, w.remote_id, w.name, w.labour_type, w.phone_number, w.aadhaar_id,
	       w.daily_wage, w.hourly_rate, w.upi_id, w.project_id, w.photo_url, w.is_active,
	       w.created_at, w.updated_at, w.deleted_at, p.name
	FROM workers w
	LEFT JOIN projects p ON p.id = w.project_id
`

func scanWorker(row interface{ Scan(...any) error }) (worker.Worker, error) {
	var (
		w                                        worker.Worker
		remoteID, phone, aadhaar, upi, projectID sql.NullString
		photo, projectName                       sql.NullString
		hourly                                   decimal.NullDecimal
		ts                                       timestamps
		err                                      error
	)
	err = row.Scan(
		&w.ID, &remoteID, &w.Name, &w.LabourType, &phone, &aadhaar,
		&w.DailyWage, &hourly, &upi, &projectID, &photo, &w.IsActive,
		&ts.createdAt, &ts.updatedAt, &ts.deletedAt, &projectName,
	)
	if err != nil {
		return worker.Worker{}, err
	}
	w.RemoteID = stringPtr(remoteID)
	w.PhoneNumber = stringPtr(phone)
	w.AadhaarID = stringPtr(aadhaar)
	w.UPIID = stringPtr(upi)
	w.ProjectID = stringPtr(projectID)
	w.PhotoURL = stringPtr(photo)
	w.ProjectName = stringPtr(projectName)
	if hourly.Valid {
		w.HourlyRate = &hourly.Decimal
	}
	if w.CreatedAt, w.UpdatedAt, w.DeletedAt, err = ts.parse(); err != nil {
		return worker.Worker{}, err
	}
	return w, nil
}

func decimalPtr(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// Create implements worker.WorkerRepository.
func (r *workerRepository) Create(ctx context.Context, w worker.Worker) (worker.Worker, error) {
	q := GetQuerier(ctx, r.db)

	if w.ID == "" {
		w.ID = uuid.Must(uuid.NewV7()).String()
	}
	w.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO workers (
			id, remote_id, name, labour_type, phone_number, aadhaar_id, daily_wage, hourly_rate,
			upi_id, project_id, photo_url, is_active, created_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		w.ID, nullable(w.RemoteID), w.Name, w.LabourType, nullable(w.PhoneNumber), nullable(w.AadhaarID),
		w.DailyWage.String(), decimalPtr(w.HourlyRate), nullable(w.UPIID), nullable(w.ProjectID),
		nullable(w.PhotoURL), w.IsActive, formatTime(w.CreatedAt), formatTimePtr(w.DeletedAt),
	)
	if err != nil {
		return worker.Worker{}, fmt.Errorf("failed to create worker: %w", err)
	}
	return r.GetByID(ctx, w.ID)
}

// Update implements worker.WorkerRepository.
func (r *workerRepository) Update(ctx context.Context, w worker.Worker) (worker.Worker, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE workers
		SET name = ?, labour_type = ?, phone_number = ?, aadhaar_id = ?, daily_wage = ?, hourly_rate = ?,
		    upi_id = ?, project_id = ?, photo_url = ?, is_active = ?, updated_at = ?, deleted_at = ?
		WHERE id = ?
	`
	res, err := q.ExecContext(ctx, query,
		w.Name, w.LabourType, nullable(w.PhoneNumber), nullable(w.AadhaarID), w.DailyWage.String(),
		decimalPtr(w.HourlyRate), nullable(w.UPIID), nullable(w.ProjectID), nullable(w.PhotoURL),
		w.IsActive, formatTime(time.Now()), formatTimePtr(w.DeletedAt), w.ID,
	)
	if err != nil {
		return worker.Worker{}, fmt.Errorf("failed to update worker: %w", err)
	}
	if err := checkAffected(res, worker.ErrWorkerNotFound); err != nil {
		return worker.Worker{}, err
	}
	return r.GetByID(ctx, w.ID)
}

// GetAll implements worker.WorkerRepository. Inactive workers are included.
func (r *workerRepository) GetAll(ctx context.Context) ([]worker.Worker, error) {
	return r.query(ctx, workerSelect+` ORDER BY w.created_at DESC`)
}

// GetByID implements worker.WorkerRepository.
func (r *workerRepository) GetByID(ctx context.Context, id string) (worker.Worker, error) {
	q := GetQuerier(ctx, r.db)

	w, err := scanWorker(q.QueryRowContext(ctx, workerSelect+` WHERE w.id = ?`, id))
	if err != nil {
		if isNoRows(err) {
			return worker.Worker{}, worker.ErrWorkerNotFound
		}
		return worker.Worker{}, fmt.Errorf("failed to get worker: %w", err)
	}
	return w, nil
}

// List implements worker.WorkerRepository.
func (r *workerRepository) List(ctx context.Context, filter worker.WorkerFilter) ([]worker.Worker, error) {
	conditions := []string{"w.is_active = 1"}
	args := []any{}

	if filter.ProjectID != nil && *filter.ProjectID != "" {
		conditions = append(conditions, "w.project_id = ?")
		args = append(args, *filter.ProjectID)
	}

	query := workerSelect + ` WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY w.created_at DESC`
	return r.query(ctx, query, args...)
}

// SetRemoteID implements store.LocalCapability.
func (r *workerRepository) SetRemoteID(ctx context.Context, localID string, remoteID string) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `UPDATE workers SET remote_id = ? WHERE id = ?`, remoteID, localID)
	if err != nil {
		return fmt.Errorf("failed to set worker remote id: %w", err)
	}
	return checkAffected(res, worker.ErrWorkerNotFound)
}

func (r *workerRepository) query(ctx context.Context, query string, args ...any) ([]worker.Worker, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	workers := []worker.Worker{}
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type workerRepository struct {
	db *database.DB
}

func NewWorkerRepository(db *database.DB) worker.WorkerRepository {
	return &workerRepository{db: db}
}

const workerSelect = `
	SELECT w.id, w.name, w.labour_type, w.phone_number, w.aadhaar_id, w.daily_wage, w.hourly_rate,
	       w.upi_id, w.project_id, w.photo_url, w.is_active, w.created_at, w.updated_at, w.deleted_at,
	       p.name
	FROM workers w
	LEFT JOIN projects p ON p.id = w.project_id
`

func scanWorker(row interface{ Scan(...any) error }) (worker.Worker, error) {
	var (
		w      worker.Worker
		hourly decimal.NullDecimal
	)
	err := row.Scan(
		&w.ID, &w.Name, &w.LabourType, &w.PhoneNumber, &w.AadhaarID, &w.DailyWage, &hourly,
		&w.UPIID, &w.ProjectID, &w.PhotoURL, &w.IsActive, &w.CreatedAt, &w.UpdatedAt, &w.DeletedAt,
		&w.ProjectName,
	)
	if err != nil {
		return worker.Worker{}, err
	}
	if hourly.Valid {
		w.HourlyRate = &hourly.Decimal
	}
	return w, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// Create implements worker.WorkerRepository.
func (r *workerRepository) Create(ctx context.Context, w worker.Worker) (worker.Worker, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO workers (
			name, labour_type, phone_number, aadhaar_id, daily_wage, hourly_rate,
			upi_id, project_id, photo_url, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var id string
	err := q.QueryRow(ctx, query,
		w.Name, w.LabourType, w.PhoneNumber, w.AadhaarID, w.DailyWage, nullDecimal(w.HourlyRate),
		w.UPIID, w.ProjectID, w.PhotoURL, w.IsActive,
	).Scan(&id)
	if err != nil {
		return worker.Worker{}, fmt.Errorf("failed to create worker: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update implements worker.WorkerRepository.
func (r *workerRepository) Update(ctx context.Context, w worker.Worker) (worker.Worker, error) {
	if !validID(w.ID) {
		return worker.Worker{}, worker.ErrWorkerNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE workers
		SET name = $1, labour_type = $2, phone_number = $3, aadhaar_id = $4, daily_wage = $5,
		    hourly_rate = $6, upi_id = $7, project_id = $8, photo_url = $9, is_active = $10,
		    deleted_at = $11, updated_at = NOW()
		WHERE id = $12
	`
	tag, err := q.Exec(ctx, query,
		w.Name, w.LabourType, w.PhoneNumber, w.AadhaarID, w.DailyWage, nullDecimal(w.HourlyRate),
		w.UPIID, w.ProjectID, w.PhotoURL, w.IsActive, w.DeletedAt, w.ID,
	)
	if err != nil {
		return worker.Worker{}, fmt.Errorf("failed to update worker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return worker.Worker{}, worker.ErrWorkerNotFound
	}
	return r.GetByID(ctx, w.ID)
}

// GetAll implements worker.WorkerRepository.
func (r *workerRepository) GetAll(ctx context.Context) ([]worker.Worker, error) {
	return r.query(ctx, workerSelect+` ORDER BY w.created_at DESC`)
}

// GetByID implements worker.WorkerRepository.
func (r *workerRepository) GetByID(ctx context.Context, id string) (worker.Worker, error) {
	if !validID(id) {
		return worker.Worker{}, worker.ErrWorkerNotFound
	}
	q := GetQuerier(ctx, r.db)

	w, err := scanWorker(q.QueryRow(ctx, workerSelect+` WHERE w.id = $1`, id))
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
	conditions := []string{"w.is_active = TRUE"}
	args := []any{}

	if filter.ProjectID != nil && *filter.ProjectID != "" {
		if !validID(*filter.ProjectID) {
			return []worker.Worker{}, nil
		}
		args = append(args, *filter.ProjectID)
		conditions = append(conditions, fmt.Sprintf("w.project_id = $%d", len(args)))
	}

	query := workerSelect + ` WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY w.created_at DESC`
	return r.query(ctx, query, args...)
}

func (r *workerRepository) query(ctx context.Context, query string, args ...any) ([]worker.Worker, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
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

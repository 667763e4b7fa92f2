package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/payment"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/google/uuid"
)

type paymentRepository struct {
	db *DB
}

// PaymentRepository is the local payment store. It also satisfies store.LocalCapability.
type PaymentRepository interface {
	payment.PaymentRepository
	store.LocalCapability[payment.Payment]
}

func NewPaymentRepository(db *DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentSelect = `
	SELECT pm.id, pm.remote_id, pm.worker_id, pm.project_id, pm.payment_date, pm.amount, pm.payment_type,
	       pm.payment_period_start, pm.payment_period_end, pm.status, pm.notes, pm.is_active,
	       pm.created_at, pm.updated_at, pm.deleted_at, w.name, p.name
	FROM payments pm
	LEFT JOIN workers w ON w.id = pm.worker_id
	LEFT JOIN projects p ON p.id = pm.project_id
`

func scanPayment(row interface{ Scan(...any) error }) (payment.Payment, error) {
	var (
		p                       payment.Payment
		remoteID, start, end    sql.NullString
		notes                   sql.NullString
		workerName, projectName sql.NullString
		ts                      timestamps
		err                     error
	)
	err = row.Scan(
		&p.ID, &remoteID, &p.WorkerID, &p.ProjectID, &p.PaymentDate, &p.Amount, &p.PaymentType,
		&start, &end, &p.Status, &notes, &p.IsActive,
		&ts.createdAt, &ts.updatedAt, &ts.deletedAt, &workerName, &projectName,
	)
	if err != nil {
		return payment.Payment{}, err
	}
	p.RemoteID = stringPtr(remoteID)
	p.PaymentPeriodStart = stringPtr(start)
	p.PaymentPeriodEnd = stringPtr(end)
	p.Notes = stringPtr(notes)
	p.WorkerName = stringPtr(workerName)
	p.ProjectName = stringPtr(projectName)
	if p.CreatedAt, p.UpdatedAt, p.DeletedAt, err = ts.parse(); err != nil {
		return payment.Payment{}, err
	}
	return p, nil
}

// Create implements payment.PaymentRepository.
func (r *paymentRepository) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	if p.ID == "" {
		p.ID = uuid.Must(uuid.NewV7()).String()
	}
	p.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO payments (
			id, remote_id, worker_id, project_id, payment_date, amount, payment_type,
			payment_period_start, payment_period_end, status, notes, is_active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		p.ID, nullable(p.RemoteID), p.WorkerID, p.ProjectID, p.PaymentDate, p.Amount.String(), p.PaymentType,
		nullable(p.PaymentPeriodStart), nullable(p.PaymentPeriodEnd), p.Status, nullable(p.Notes),
		p.IsActive, formatTime(p.CreatedAt),
	)
	if err != nil {
		return payment.Payment{}, fmt.Errorf("failed to create payment: %w", err)
	}
	return r.GetByID(ctx, p.ID)
}

// Update implements payment.PaymentRepository. Only status and notes change.
func (r *paymentRepository) Update(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx,
		`UPDATE payments SET status = ?, notes = ?, updated_at = ? WHERE id = ?`,
		p.Status, nullable(p.Notes), formatTime(time.Now()), p.ID,
	)
	if err != nil {
		return payment.Payment{}, fmt.Errorf("failed to update payment: %w", err)
	}
	if err := checkAffected(res, payment.ErrPaymentNotFound); err != nil {
		return payment.Payment{}, err
	}
	return r.GetByID(ctx, p.ID)
}

// GetAll implements payment.PaymentRepository.
func (r *paymentRepository) GetAll(ctx context.Context) ([]payment.Payment, error) {
	return r.query(ctx, paymentSelect+` ORDER BY pm.payment_date DESC, pm.created_at DESC`)
}

// GetByID implements payment.PaymentRepository.
func (r *paymentRepository) GetByID(ctx context.Context, id string) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPayment(q.QueryRowContext(ctx, paymentSelect+` WHERE pm.id = ?`, id))
	if err != nil {
		if isNoRows(err) {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		return payment.Payment{}, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// List implements payment.PaymentRepository.
func (r *paymentRepository) List(ctx context.Context, filter payment.PaymentFilter) ([]payment.Payment, error) {
	conditions := []string{"pm.is_active = 1"}
	args := []any{}

	if filter.WorkerID != nil && *filter.WorkerID != "" {
		conditions = append(conditions, "pm.worker_id = ?")
		args = append(args, *filter.WorkerID)
	}
	if filter.ProjectID != nil && *filter.ProjectID != "" {
		conditions = append(conditions, "pm.project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, "pm.status = ?")
		args = append(args, *filter.Status)
	}

	query := paymentSelect + ` WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY pm.payment_date DESC, pm.created_at DESC`
	return r.query(ctx, query, args...)
}

// SetRemoteID implements store.LocalCapability.
func (r *paymentRepository) SetRemoteID(ctx context.Context, localID string, remoteID string) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `UPDATE payments SET remote_id = ? WHERE id = ?`, remoteID, localID)
	if err != nil {
		return fmt.Errorf("failed to set payment remote id: %w", err)
	}
	return checkAffected(res, payment.ErrPaymentNotFound)
}

func (r *paymentRepository) query(ctx context.Context, query string, args ...any) ([]payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []payment.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

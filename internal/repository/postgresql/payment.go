package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/payment"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/database"
)

type paymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) payment.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentSelect = `
	SELECT pm.id, pm.worker_id, pm.project_id, to_char(pm.payment_date, 'YYYY-MM-DD'), pm.amount, pm.payment_type,
	       to_char(pm.payment_period_start, 'YYYY-MM-DD'), to_char(pm.payment_period_end, 'YYYY-MM-DD'),
	       pm.status, pm.notes, pm.is_active, pm.created_at, pm.updated_at, pm.deleted_at,
	       w.name, p.name
	FROM payments pm
	LEFT JOIN workers w ON w.id = pm.worker_id
	LEFT JOIN projects p ON p.id = pm.project_id
`

func scanPayment(row interface{ Scan(...any) error }) (payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID, &p.WorkerID, &p.ProjectID, &p.PaymentDate, &p.Amount, &p.PaymentType,
		&p.PaymentPeriodStart, &p.PaymentPeriodEnd,
		&p.Status, &p.Notes, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
		&p.WorkerName, &p.ProjectName,
	)
	return p, err
}

// Create implements payment.PaymentRepository.
func (r *paymentRepository) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payments (
			worker_id, project_id, payment_date, amount, payment_type,
			payment_period_start, payment_period_end, status, notes, is_active
		) VALUES ($1, $2, $3::date, $4, $5, $6::date, $7::date, $8, $9, $10)
		RETURNING id
	`
	var id string
	err := q.QueryRow(ctx, query,
		p.WorkerID, p.ProjectID, p.PaymentDate, p.Amount, p.PaymentType,
		textOrNil(p.PaymentPeriodStart), textOrNil(p.PaymentPeriodEnd), p.Status, p.Notes, p.IsActive,
	).Scan(&id)
	if err != nil {
		return payment.Payment{}, fmt.Errorf("failed to create payment: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update implements payment.PaymentRepository. Only status and notes change.
func (r *paymentRepository) Update(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	if !validID(p.ID) {
		return payment.Payment{}, payment.ErrPaymentNotFound
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE payments SET status = $1, notes = $2, updated_at = NOW() WHERE id = $3`,
		p.Status, p.Notes, p.ID,
	)
	if err != nil {
		return payment.Payment{}, fmt.Errorf("failed to update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payment.Payment{}, payment.ErrPaymentNotFound
	}
	return r.GetByID(ctx, p.ID)
}

// GetAll implements payment.PaymentRepository.
func (r *paymentRepository) GetAll(ctx context.Context) ([]payment.Payment, error) {
	return r.query(ctx, paymentSelect+` ORDER BY pm.payment_date DESC, pm.created_at DESC`)
}

// GetByID implements payment.PaymentRepository.
func (r *paymentRepository) GetByID(ctx context.Context, id string) (payment.Payment, error) {
	if !validID(id) {
		return payment.Payment{}, payment.ErrPaymentNotFound
	}
	q := GetQuerier(ctx, r.db)

	p, err := scanPayment(q.QueryRow(ctx, paymentSelect+` WHERE pm.id = $1`, id))
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
	conditions := []string{"pm.is_active = TRUE"}
	args := []any{}

	add := func(clause string, value string) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.WorkerID != nil && *filter.WorkerID != "" {
		if !validID(*filter.WorkerID) {
			return []payment.Payment{}, nil
		}
		add("pm.worker_id = $%d", *filter.WorkerID)
	}
	if filter.ProjectID != nil && *filter.ProjectID != "" {
		if !validID(*filter.ProjectID) {
			return []payment.Payment{}, nil
		}
		add("pm.project_id = $%d", *filter.ProjectID)
	}
	if filter.Status != nil && *filter.Status != "" {
		add("pm.status = $%d", *filter.Status)
	}

	query := paymentSelect + ` WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY pm.payment_date DESC, pm.created_at DESC`
	return r.query(ctx, query, args...)
}

func (r *paymentRepository) query(ctx context.Context, query string, args ...any) ([]payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
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

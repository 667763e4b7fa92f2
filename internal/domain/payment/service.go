package payment

import "context"

// PaymentService defines business logic for payment operations
type PaymentService interface {
	Create(ctx context.Context, req CreatePaymentRequest) (Payment, error)

	// UpdateStatus changes the paid/unpaid status and notes of a payment
	UpdateStatus(ctx context.Context, req UpdatePaymentRequest) (Payment, error)

	Get(ctx context.Context, id string) (Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]Payment, error)

	// CalculateWages totals a worker's day-rate earnings over a date range
	CalculateWages(ctx context.Context, req CalculateWagesRequest) (WageSummary, error)
}

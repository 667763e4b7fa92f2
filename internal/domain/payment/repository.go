package payment

import (
	"context"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
)

// PaymentRepository defines data access methods for payments.
// Update only changes status and notes; the rest of a payment is immutable once recorded.
type PaymentRepository interface {
	store.Capability[Payment]

	// List retrieves payments ordered by payment date, newest first
	List(ctx context.Context, filter PaymentFilter) ([]Payment, error)
}

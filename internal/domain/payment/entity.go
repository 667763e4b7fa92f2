package payment

import (
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Type enum
type Type string

const (
	TypeWage      Type = "wage"
	TypeAdvance   Type = "advance"
	TypeBonus     Type = "bonus"
	TypeDeduction Type = "deduction"
)

var Types = []string{string(TypeWage), string(TypeAdvance), string(TypeBonus), string(TypeDeduction)}

// Status enum
type Status string

const (
	StatusPaid   Status = "paid"
	StatusUnpaid Status = "unpaid"
)

var Statuses = []string{string(StatusPaid), string(StatusUnpaid)}

// Payment is money paid to (or deducted from) a worker.
type Payment struct {
	ID                 string          `json:"id"`
	RemoteID           *string         `json:"remote_id,omitempty"`
	WorkerID           string          `json:"worker_id"`
	ProjectID          string          `json:"project_id"`
	PaymentDate        string          `json:"payment_date"` // YYYY-MM-DD
	Amount             decimal.Decimal `json:"amount"`
	PaymentType        Type            `json:"payment_type"`
	PaymentPeriodStart *string         `json:"payment_period_start,omitempty"`
	PaymentPeriodEnd   *string         `json:"payment_period_end,omitempty"`
	Status             Status          `json:"status"`
	Notes              *string         `json:"notes,omitempty"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          *time.Time      `json:"updated_at,omitempty"`
	DeletedAt          *time.Time      `json:"deleted_at,omitempty"`

	// Joined fields
	WorkerName  *string `json:"worker_name,omitempty"`
	ProjectName *string `json:"project_name,omitempty"`
}

func (p Payment) Kind() store.Kind { return store.KindPayment }

func (p Payment) Key() string { return p.ID }

func (p Payment) RemoteKey() string {
	if p.RemoteID == nil {
		return ""
	}
	return *p.RemoteID
}

func (p Payment) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(p.WorkerID) {
		errs.Add("worker_id", "worker_id is required")
	}

	if validator.IsEmpty(p.ProjectID) {
		errs.Add("project_id", "project_id is required")
	}

	if _, valid := validator.IsValidDate(p.PaymentDate); !valid {
		errs.Add("payment_date", "payment_date must be in YYYY-MM-DD format")
	}

	if p.Amount.IsZero() {
		errs.Add("amount", "amount must not be zero")
	}

	if !validator.IsInSlice(string(p.PaymentType), Types) {
		errs.Add("payment_type", "payment_type must be one of: wage, advance, bonus, deduction")
	}

	if !validator.IsInSlice(string(p.Status), Statuses) {
		errs.Add("status", "status must be one of: paid, unpaid")
	}

	var start, end time.Time
	var startOK, endOK bool
	if p.PaymentPeriodStart != nil {
		if start, startOK = validator.IsValidDate(*p.PaymentPeriodStart); !startOK {
			errs.Add("payment_period_start", "payment_period_start must be in YYYY-MM-DD format")
		}
	}
	if p.PaymentPeriodEnd != nil {
		if end, endOK = validator.IsValidDate(*p.PaymentPeriodEnd); !endOK {
			errs.Add("payment_period_end", "payment_period_end must be in YYYY-MM-DD format")
		}
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("payment_period_end", "payment_period_end must not be before payment_period_start")
	}

	return errs.Err()
}

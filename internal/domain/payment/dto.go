package payment

import (
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// PAYMENT DTOs
// ========================================

type CreatePaymentRequest struct {
	WorkerID           string          `json:"worker_id"`
	ProjectID          string          `json:"project_id"`
	PaymentDate        string          `json:"payment_date"`
	Amount             decimal.Decimal `json:"amount"`
	PaymentType        string          `json:"payment_type"`
	PaymentPeriodStart *string         `json:"payment_period_start,omitempty"`
	PaymentPeriodEnd   *string         `json:"payment_period_end,omitempty"`
	Status             string          `json:"status,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
}

func (r *CreatePaymentRequest) Validate() error {
	p := r.Apply(Payment{})
	return p.Validate()
}

// Apply copies the request fields onto p. Status defaults to unpaid.
func (r *CreatePaymentRequest) Apply(p Payment) Payment {
	p.WorkerID = r.WorkerID
	p.ProjectID = r.ProjectID
	p.PaymentDate = r.PaymentDate
	p.Amount = r.Amount
	p.PaymentType = Type(r.PaymentType)
	p.PaymentPeriodStart = r.PaymentPeriodStart
	p.PaymentPeriodEnd = r.PaymentPeriodEnd
	p.Status = Status(r.Status)
	if r.Status == "" {
		p.Status = StatusUnpaid
	}
	p.Notes = r.Notes
	p.IsActive = true
	return p
}

// FromPayment builds the request that reproduces p.
func FromPayment(p Payment) CreatePaymentRequest {
	return CreatePaymentRequest{
		WorkerID:           p.WorkerID,
		ProjectID:          p.ProjectID,
		PaymentDate:        p.PaymentDate,
		Amount:             p.Amount,
		PaymentType:        string(p.PaymentType),
		PaymentPeriodStart: p.PaymentPeriodStart,
		PaymentPeriodEnd:   p.PaymentPeriodEnd,
		Status:             string(p.Status),
		Notes:              p.Notes,
	}
}

type UpdatePaymentRequest struct {
	ID     string  `json:"-"`
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

func (r *UpdatePaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Status, Statuses) {
		errs.Add("status", "status must be one of: paid, unpaid")
	}

	return errs.Err()
}

type PaymentFilter struct {
	WorkerID  *string `json:"worker_id,omitempty"`
	ProjectID *string `json:"project_id,omitempty"`
	Status    *string `json:"status,omitempty"`
}

func (f *PaymentFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !validator.IsInSlice(*f.Status, Statuses) {
		errs.Add("status", "status must be one of: paid, unpaid")
	}

	return errs.Err()
}

type CalculateWagesRequest struct {
	WorkerID  string `json:"worker_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r *CalculateWagesRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.WorkerID) {
		errs.Add("worker_id", "worker_id is required")
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}

	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}

	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return errs.Err()
}

// WageSummary is the derived wage total for a worker over a period.
type WageSummary struct {
	WorkerID   string          `json:"workerId"`
	WorkerName string          `json:"workerName"`
	DailyWage  decimal.Decimal `json:"dailyWage"`
	FullDays   int             `json:"fullDays"`
	HalfDays   int             `json:"halfDays"`
	TotalDays  int             `json:"totalDays"`
	TotalWages decimal.Decimal `json:"totalWages"`
	StartDate  string          `json:"startDate"`
	EndDate    string          `json:"endDate"`
}

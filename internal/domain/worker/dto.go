package worker

import (
	"github.com/shopspring/decimal"
)

// ========================================
// WORKER DTOs
// ========================================

type CreateWorkerRequest struct {
	Name        string           `json:"name"`
	LabourType  string           `json:"labour_type"`
	PhoneNumber *string          `json:"phone_number,omitempty"`
	AadhaarID   *string          `json:"aadhaar_id,omitempty"`
	DailyWage   decimal.Decimal  `json:"daily_wage"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate,omitempty"`
	UPIID       *string          `json:"upi_id,omitempty"`
	ProjectID   *string          `json:"project_id,omitempty"`
	PhotoURL    *string          `json:"photo_url,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

func (r *CreateWorkerRequest) Validate() error {
	w := r.Apply(Worker{})
	return w.Validate()
}

// Apply copies the request fields onto w.
func (r *CreateWorkerRequest) Apply(w Worker) Worker {
	w.Name = r.Name
	w.LabourType = LabourType(r.LabourType)
	w.PhoneNumber = emptyToNil(r.PhoneNumber)
	w.AadhaarID = emptyToNil(r.AadhaarID)
	w.DailyWage = r.DailyWage
	w.HourlyRate = r.HourlyRate
	w.UPIID = emptyToNil(r.UPIID)
	w.ProjectID = emptyToNil(r.ProjectID)
	w.PhotoURL = emptyToNil(r.PhotoURL)
	w.IsActive = true
	if r.IsActive != nil {
		w.IsActive = *r.IsActive
	}
	return w
}

// UpdateWorkerRequest carries the full worker, as PUT /api/workers/{id} replaces every field.
type UpdateWorkerRequest struct {
	ID string `json:"-"`
	CreateWorkerRequest
}

func (r *UpdateWorkerRequest) Validate() error {
	return r.CreateWorkerRequest.Validate()
}

// FromWorker builds the request that reproduces w.
func FromWorker(w Worker) CreateWorkerRequest {
	active := w.IsActive
	return CreateWorkerRequest{
		Name:        w.Name,
		LabourType:  string(w.LabourType),
		PhoneNumber: w.PhoneNumber,
		AadhaarID:   w.AadhaarID,
		DailyWage:   w.DailyWage,
		HourlyRate:  w.HourlyRate,
		UPIID:       w.UPIID,
		ProjectID:   w.ProjectID,
		PhotoURL:    w.PhotoURL,
		IsActive:    &active,
	}
}

type WorkerFilter struct {
	ProjectID *string `json:"project_id,omitempty"`
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

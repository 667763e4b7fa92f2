package worker

import (
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// LabourType enum
type LabourType string

const (
	LabourTypeMason         LabourType = "Mason"
	LabourTypeHelper        LabourType = "Helper"
	LabourTypeElectrician   LabourType = "Electrician"
	LabourTypePlumber       LabourType = "Plumber"
	LabourTypeCarpenter     LabourType = "Carpenter"
	LabourTypeWelder        LabourType = "Welder"
	LabourTypePainter       LabourType = "Painter"
	LabourTypeDriver        LabourType = "Driver"
	LabourTypeSupervisor    LabourType = "Supervisor"
	LabourTypeGeneralLabour LabourType = "General Labour"
)

var LabourTypes = []string{
	string(LabourTypeMason),
	string(LabourTypeHelper),
	string(LabourTypeElectrician),
	string(LabourTypePlumber),
	string(LabourTypeCarpenter),
	string(LabourTypeWelder),
	string(LabourTypePainter),
	string(LabourTypeDriver),
	string(LabourTypeSupervisor),
	string(LabourTypeGeneralLabour),
}

// Worker is a labourer on a construction site.
// The struct doubles as the sync payload snapshot, hence the JSON tags.
type Worker struct {
	ID          string           `json:"id"`
	RemoteID    *string          `json:"remote_id,omitempty"`
	Name        string           `json:"name"`
	LabourType  LabourType       `json:"labour_type"`
	PhoneNumber *string          `json:"phone_number,omitempty"`
	AadhaarID   *string          `json:"aadhaar_id,omitempty"`
	DailyWage   decimal.Decimal  `json:"daily_wage"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate,omitempty"`
	UPIID       *string          `json:"upi_id,omitempty"`
	ProjectID   *string          `json:"project_id,omitempty"`
	PhotoURL    *string          `json:"photo_url,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   *time.Time       `json:"updated_at,omitempty"`
	DeletedAt   *time.Time       `json:"deleted_at,omitempty"`

	// Joined fields
	ProjectName *string `json:"project_name,omitempty"`
}

func (w Worker) Kind() store.Kind { return store.KindWorker }

func (w Worker) Key() string { return w.ID }

func (w Worker) RemoteKey() string {
	if w.RemoteID == nil {
		return ""
	}
	return *w.RemoteID
}

func (w Worker) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(w.Name) {
		errs.Add("name", "name is required")
	}

	if !validator.IsInSlice(string(w.LabourType), LabourTypes) {
		errs.Add("labour_type", "labour_type must be one of the supported labour types")
	}

	if !w.DailyWage.IsPositive() {
		errs.Add("daily_wage", "daily_wage must be a positive number")
	}

	if w.HourlyRate != nil && !w.HourlyRate.IsPositive() {
		errs.Add("hourly_rate", "hourly_rate must be a positive number")
	}

	if !validator.IsBlank(w.PhoneNumber) && !validator.IsValidPhoneNumber(*w.PhoneNumber) {
		errs.Add("phone_number", "phone_number must be a valid 10 digit mobile number")
	}

	if !validator.IsBlank(w.AadhaarID) && !validator.IsValidAadhaar(*w.AadhaarID) {
		errs.Add("aadhaar_id", "aadhaar_id must be 12 digits")
	}

	if !validator.IsBlank(w.UPIID) && !validator.IsValidUPI(*w.UPIID) {
		errs.Add("upi_id", "upi_id must look like name@bank")
	}

	return errs.Err()
}

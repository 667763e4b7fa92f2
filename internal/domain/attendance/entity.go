package attendance

import (
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/validator"
)

// Status enum
type Status string

const (
	StatusFull   Status = "full"
	StatusHalf   Status = "half"
	StatusAbsent Status = "absent"
)

var Statuses = []string{string(StatusFull), string(StatusHalf), string(StatusAbsent)}

// Attendance is one worker's mark for one calendar day.
// At most one record exists per (WorkerID, AttendanceDate).
type Attendance struct {
	ID               string     `json:"id"`
	RemoteID         *string    `json:"remote_id,omitempty"`
	WorkerID         string     `json:"worker_id"`
	ProjectID        string     `json:"project_id"`
	AttendanceDate   string     `json:"attendance_date"` // YYYY-MM-DD
	Status           Status     `json:"status"`
	HoursWorked      *float64   `json:"hours_worked,omitempty"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	LocationAccuracy *float64   `json:"location_accuracy,omitempty"`
	LocationName     *string    `json:"location_name,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`

	// Joined fields
	WorkerName  *string `json:"worker_name,omitempty"`
	LabourType  *string `json:"labour_type,omitempty"`
	ProjectName *string `json:"project_name,omitempty"`
}

func (a Attendance) Kind() store.Kind { return store.KindAttendance }

func (a Attendance) Key() string { return a.ID }

func (a Attendance) RemoteKey() string {
	if a.RemoteID == nil {
		return ""
	}
	return *a.RemoteID
}

func (a Attendance) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(a.WorkerID) {
		errs.Add("worker_id", "worker_id is required")
	}

	if validator.IsEmpty(a.ProjectID) {
		errs.Add("project_id", "project_id is required")
	}

	if _, valid := validator.IsValidDate(a.AttendanceDate); !valid {
		errs.Add("attendance_date", "attendance_date must be in YYYY-MM-DD format")
	}

	if !validator.IsInSlice(string(a.Status), Statuses) {
		errs.Add("status", "status must be one of: full, half, absent")
	}

	if a.HoursWorked != nil && (*a.HoursWorked < 0 || *a.HoursWorked > 24) {
		errs.Add("hours_worked", "hours_worked must be between 0 and 24")
	}

	if a.Latitude != nil && (*a.Latitude < -90 || *a.Latitude > 90) {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}

	if a.Longitude != nil && (*a.Longitude < -180 || *a.Longitude > 180) {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}

	if (a.Latitude == nil) != (a.Longitude == nil) {
		errs.Add("location", "latitude and longitude must be provided together")
	}

	if a.LocationAccuracy != nil && *a.LocationAccuracy < 0 {
		errs.Add("location_accuracy", "location_accuracy must not be negative")
	}

	return errs.Err()
}

// Date parses AttendanceDate.
func (a Attendance) Date() (time.Time, error) {
	return time.Parse(validator.DateLayout, a.AttendanceDate)
}

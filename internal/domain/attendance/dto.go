package attendance

import (
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type MarkAttendanceRequest struct {
	WorkerID         string   `json:"worker_id"`
	ProjectID        string   `json:"project_id"`
	AttendanceDate   string   `json:"attendance_date"`
	Status           string   `json:"status"`
	HoursWorked      *float64 `json:"hours_worked,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	LocationAccuracy *float64 `json:"location_accuracy,omitempty"`
	LocationName     *string  `json:"location_name,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

func (r *MarkAttendanceRequest) Validate() error {
	a := r.Apply(Attendance{})
	return a.Validate()
}

// Apply copies the request fields onto a. The worker and date identify the
// record and are only set when a is new.
func (r *MarkAttendanceRequest) Apply(a Attendance) Attendance {
	if a.ID == "" {
		a.WorkerID = r.WorkerID
		a.AttendanceDate = r.AttendanceDate
		a.IsActive = true
	}
	a.ProjectID = r.ProjectID
	a.Status = Status(r.Status)
	a.HoursWorked = r.HoursWorked
	a.Latitude = r.Latitude
	a.Longitude = r.Longitude
	a.LocationAccuracy = r.LocationAccuracy
	a.LocationName = r.LocationName
	a.Notes = r.Notes
	return a
}

// FromAttendance builds the request that reproduces a.
func FromAttendance(a Attendance) MarkAttendanceRequest {
	return MarkAttendanceRequest{
		WorkerID:         a.WorkerID,
		ProjectID:        a.ProjectID,
		AttendanceDate:   a.AttendanceDate,
		Status:           string(a.Status),
		HoursWorked:      a.HoursWorked,
		Latitude:         a.Latitude,
		Longitude:        a.Longitude,
		LocationAccuracy: a.LocationAccuracy,
		LocationName:     a.LocationName,
		Notes:            a.Notes,
	}
}

type AttendanceFilter struct {
	Date      *string `json:"date,omitempty"` // YYYY-MM-DD
	ProjectID *string `json:"project_id,omitempty"`
	WorkerID  *string `json:"worker_id,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
}

// Validate checks the filter and defaults Date to today when no range is given.
func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Date != nil && *f.Date != "" {
		if _, valid := validator.IsValidDate(*f.Date); !valid {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}

	if (f.Date == nil || *f.Date == "") && f.StartDate == nil && f.EndDate == nil {
		today := time.Now().Format(validator.DateLayout)
		f.Date = &today
	}

	return errs.Err()
}

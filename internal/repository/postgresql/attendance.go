package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/attendance"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceSelect = `
	SELECT a.id, a.worker_id, a.project_id, to_char(a.attendance_date, 'YYYY-MM-DD'), a.status,
	       a.hours_worked, a.latitude, a.longitude, a.location_accuracy, a.location_name, a.notes,
	       a.is_active, a.created_at, a.updated_at, a.deleted_at,
	       w.name, w.labour_type, p.name
	FROM attendance a
	LEFT JOIN workers w ON w.id = a.worker_id
	LEFT JOIN projects p ON p.id = a.project_id
`

func scanAttendance(row interface{ Scan(...any) error }) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID, &a.WorkerID, &a.ProjectID, &a.AttendanceDate, &a.Status,
		&a.HoursWorked, &a.Latitude, &a.Longitude, &a.LocationAccuracy, &a.LocationName, &a.Notes,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
		&a.WorkerName, &a.LabourType, &a.ProjectName,
	)
	return a, err
}

// Create implements attendance.AttendanceRepository. A second record for the
// same worker and day overwrites the first, so concurrent submissions from
// several devices resolve to one row instead of a unique violation.
func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance (
			worker_id, project_id, attendance_date, status, hours_worked,
			latitude, longitude, location_accuracy, location_name, notes, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (worker_id, attendance_date) DO UPDATE
		SET project_id = EXCLUDED.project_id, status = EXCLUDED.status, hours_worked = EXCLUDED.hours_worked,
		    latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
		    location_accuracy = EXCLUDED.location_accuracy, location_name = EXCLUDED.location_name,
		    notes = EXCLUDED.notes, is_active = EXCLUDED.is_active, deleted_at = NULL, updated_at = NOW()
		RETURNING id
	`
	var id string
	err := q.QueryRow(ctx, query,
		a.WorkerID, a.ProjectID, a.AttendanceDate, a.Status, a.HoursWorked,
		a.Latitude, a.Longitude, a.LocationAccuracy, a.LocationName, a.Notes, a.IsActive,
	).Scan(&id)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update implements attendance.AttendanceRepository. Worker and date are immutable.
func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if !validID(a.ID) {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance
		SET project_id = $1, status = $2, hours_worked = $3, latitude = $4, longitude = $5,
		    location_accuracy = $6, location_name = $7, notes = $8, updated_at = NOW()
		WHERE id = $9
	`
	tag, err := q.Exec(ctx, query,
		a.ProjectID, a.Status, a.HoursWorked, a.Latitude, a.Longitude,
		a.LocationAccuracy, a.LocationName, a.Notes, a.ID,
	)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.GetByID(ctx, a.ID)
}

// GetAll implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetAll(ctx context.Context) ([]attendance.Attendance, error) {
	return r.query(ctx, attendanceSelect+` ORDER BY a.attendance_date DESC, w.name`)
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	if !validID(id) {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, r.db)

	a, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}

// GetByWorkerAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByWorkerAndDate(ctx context.Context, workerID string, date string) (*attendance.Attendance, error) {
	if !validID(workerID) {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	a, err := scanAttendance(q.QueryRow(ctx,
		attendanceSelect+` WHERE a.worker_id = $1 AND a.attendance_date = $2::date`, workerID, date))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by worker and date: %w", err)
	}
	return &a, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	conditions := []string{"a.is_active = TRUE"}
	args := []any{}

	add := func(clause string, value string) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Date != nil && *filter.Date != "" {
		add("a.attendance_date = $%d::date", *filter.Date)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		add("a.attendance_date >= $%d::date", *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		add("a.attendance_date <= $%d::date", *filter.EndDate)
	}
	if filter.ProjectID != nil && *filter.ProjectID != "" {
		if !validID(*filter.ProjectID) {
			return []attendance.Attendance{}, nil
		}
		add("a.project_id = $%d", *filter.ProjectID)
	}
	if filter.WorkerID != nil && *filter.WorkerID != "" {
		if !validID(*filter.WorkerID) {
			return []attendance.Attendance{}, nil
		}
		add("a.worker_id = $%d", *filter.WorkerID)
	}

	query := attendanceSelect + ` WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY a.attendance_date DESC, w.name`
	return r.query(ctx, query, args...)
}

func (r *attendanceRepository) query(ctx context.Context, query string, args ...any) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	records := []attendance.Attendance{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

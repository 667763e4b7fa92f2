package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/attendance"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/google/uuid"
)

type attendanceRepository struct {
	db *DB
}

// AttendanceRepository is the local attendance store. It also satisfies store.LocalCapability.
type AttendanceRepository interface {
	attendance.AttendanceRepository
	store.LocalCapability[attendance.Attendance]
}

func NewAttendanceRepository(db *DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceSelect = `
	SELECT a.id, a.remote_id, a.worker_id, a.project_id, a.attendance_date, a.status,
	       a.hours_worked, a.latitude, a.longitude, a.location_accuracy, a.location_name, a.notes,
	       a.is_active, a.created_at, a.updated_at, a.deleted_at,
	       w.name, w.labour_type, p.name
	FROM attendance a
	LEFT JOIN workers w ON w.id = a.worker_id
	LEFT JOIN projects p ON p.id = a.project_id
`

func scanAttendance(row interface{ Scan(...any) error }) (attendance.Attendance, error) {
	var (
		a                                   attendance.Attendance
		remoteID, locationName, notes       sql.NullString
		workerName, labourType, projectName sql.NullString
		hours, lat, lng, accuracy           sql.NullFloat64
		ts                                  timestamps
		err                                 error
	)
	err = row.Scan(
		&a.ID, &remoteID, &a.WorkerID, &a.ProjectID, &a.AttendanceDate, &a.Status,
		&hours, &lat, &lng, &accuracy, &locationName, &notes,
		&a.IsActive, &ts.createdAt, &ts.updatedAt, &ts.deletedAt,
		&workerName, &labourType, &projectName,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}
	a.RemoteID = stringPtr(remoteID)
	a.HoursWorked = floatPtr(hours)
	a.Latitude = floatPtr(lat)
	a.Longitude = floatPtr(lng)
	a.LocationAccuracy = floatPtr(accuracy)
	a.LocationName = stringPtr(locationName)
	a.Notes = stringPtr(notes)
	a.WorkerName = stringPtr(workerName)
	a.LabourType = stringPtr(labourType)
	a.ProjectName = stringPtr(projectName)
	if a.CreatedAt, a.UpdatedAt, a.DeletedAt, err = ts.parse(); err != nil {
		return attendance.Attendance{}, err
	}
	return a, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	if a.ID == "" {
		a.ID = uuid.Must(uuid.NewV7()).String()
	}
	a.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO attendance (
			id, remote_id, worker_id, project_id, attendance_date, status, hours_worked,
			latitude, longitude, location_accuracy, location_name, notes, is_active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		a.ID, nullable(a.RemoteID), a.WorkerID, a.ProjectID, a.AttendanceDate, a.Status, nullable(a.HoursWorked),
		nullable(a.Latitude), nullable(a.Longitude), nullable(a.LocationAccuracy), nullable(a.LocationName),
		nullable(a.Notes), a.IsActive, formatTime(a.CreatedAt),
	)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return r.GetByID(ctx, a.ID)
}

// Update implements attendance.AttendanceRepository. Worker and date are immutable.
func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance
		SET project_id = ?, status = ?, hours_worked = ?, latitude = ?, longitude = ?,
		    location_accuracy = ?, location_name = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := q.ExecContext(ctx, query,
		a.ProjectID, a.Status, nullable(a.HoursWorked), nullable(a.Latitude), nullable(a.Longitude),
		nullable(a.LocationAccuracy), nullable(a.LocationName), nullable(a.Notes), formatTime(time.Now()), a.ID,
	)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
	}
	if err := checkAffected(res, attendance.ErrAttendanceNotFound); err != nil {
		return attendance.Attendance{}, err
	}
	return r.GetByID(ctx, a.ID)
}

// GetAll implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetAll(ctx context.Context) ([]attendance.Attendance, error) {
	return r.query(ctx, attendanceSelect+` ORDER BY a.attendance_date DESC, w.name`)
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAttendance(q.QueryRowContext(ctx, attendanceSelect+` WHERE a.id = ?`, id))
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
	q := GetQuerier(ctx, r.db)

	a, err := scanAttendance(q.QueryRowContext(ctx,
		attendanceSelect+` WHERE a.worker_id = ? AND a.attendance_date = ?`, workerID, date))
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
	conditions := []string{"a.is_active = 1"}
	args := []any{}

	if filter.Date != nil && *filter.Date != "" {
		conditions = append(conditions, "a.attendance_date = ?")
		args = append(args, *filter.Date)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, "a.attendance_date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, "a.attendance_date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.ProjectID != nil && *filter.ProjectID != "" {
		conditions = append(conditions, "a.project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.WorkerID != nil && *filter.WorkerID != "" {
		conditions = append(conditions, "a.worker_id = ?")
		args = append(args, *filter.WorkerID)
	}

	query := attendanceSelect + ` WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY a.attendance_date DESC, w.name`
	return r.query(ctx, query, args...)
}

// SetRemoteID implements store.LocalCapability.
func (r *attendanceRepository) SetRemoteID(ctx context.Context, localID string, remoteID string) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `UPDATE attendance SET remote_id = ? WHERE id = ?`, remoteID, localID)
	if err != nil {
		return fmt.Errorf("failed to set attendance remote id: %w", err)
	}
	return checkAffected(res, attendance.ErrAttendanceNotFound)
}

func (r *attendanceRepository) query(ctx context.Context, query string, args ...any) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, query, args...)
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

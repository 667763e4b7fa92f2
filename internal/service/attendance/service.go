package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/attendance"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	workerRepo  worker.WorkerRepository
	projectRepo project.ProjectRepository
	syncer      store.Syncer
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	workerRepo worker.WorkerRepository,
	projectRepo project.ProjectRepository,
	syncer store.Syncer,
) attendance.AttendanceService {
	if syncer == nil {
		syncer = store.NopSyncer{}
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		workerRepo:           workerRepo,
		projectRepo:          projectRepo,
		syncer:               syncer,
	}
}

// Mark implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Mark(ctx context.Context, req attendance.MarkAttendanceRequest) (attendance.Attendance, error) {
	if err := req.Validate(); err != nil {
		return attendance.Attendance{}, err
	}

	if _, err := s.workerRepo.GetByID(ctx, req.WorkerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return attendance.Attendance{}, attendance.ErrWorkerNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get worker: %w", err)
	}

	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return attendance.Attendance{}, attendance.ErrProjectNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get project: %w", err)
	}

	existing, err := s.AttendanceRepository.GetByWorkerAndDate(ctx, req.WorkerID, req.AttendanceDate)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to check existing attendance: %w", err)
	}

	var saved attendance.Attendance
	if existing != nil {
		saved, err = s.AttendanceRepository.Update(ctx, req.Apply(*existing))
		if err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
		}
		slog.Info("attendance updated", "attendance_id", saved.ID, "worker_id", saved.WorkerID, "date", saved.AttendanceDate, "status", saved.Status)
	} else {
		saved, err = s.AttendanceRepository.Create(ctx, req.Apply(attendance.Attendance{}))
		if err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
		}
		slog.Info("attendance marked", "attendance_id", saved.ID, "worker_id", saved.WorkerID, "date", saved.AttendanceDate, "status", saved.Status)
	}

	if err := s.syncer.SyncEntity(ctx, saved); err != nil {
		return saved, fmt.Errorf("failed to sync attendance: %w", err)
	}
	return saved, nil
}

// Get implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Get(ctx context.Context, id string) (attendance.Attendance, error) {
	a, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}

// List implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, nil
}

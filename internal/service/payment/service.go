package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/attendance"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/payment"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
	"github.com/shopspring/decimal"
)

var halfDay = decimal.NewFromFloat(0.5)

type PaymentServiceImpl struct {
	paymentRepo    payment.PaymentRepository
	workerRepo     worker.WorkerRepository
	attendanceRepo attendance.AttendanceRepository
	syncer         store.Syncer
}

func NewPaymentService(
	paymentRepo payment.PaymentRepository,
	workerRepo worker.WorkerRepository,
	attendanceRepo attendance.AttendanceRepository,
	syncer store.Syncer,
) payment.PaymentService {
	if syncer == nil {
		syncer = store.NopSyncer{}
	}
	return &PaymentServiceImpl{
		paymentRepo:    paymentRepo,
		workerRepo:     workerRepo,
		attendanceRepo: attendanceRepo,
		syncer:         syncer,
	}
}

// Create implements payment.PaymentService.
func (s *PaymentServiceImpl) Create(ctx context.Context, req payment.CreatePaymentRequest) (payment.Payment, error) {
	if err := req.Validate(); err != nil {
		return payment.Payment{}, err
	}

	if _, err := s.getWorker(ctx, req.WorkerID); err != nil {
		return payment.Payment{}, err
	}

	created, err := s.paymentRepo.Create(ctx, req.Apply(payment.Payment{}))
	if err != nil {
		return payment.Payment{}, fmt.Errorf("failed to create payment: %w", err)
	}

	slog.Info("payment recorded",
		"payment_id", created.ID,
		"worker_id", created.WorkerID,
		"type", created.PaymentType,
		"amount", created.Amount.String(),
	)

	if err := s.syncer.SyncEntity(ctx, created); err != nil {
		return created, fmt.Errorf("failed to sync payment: %w", err)
	}
	return created, nil
}

// UpdateStatus implements payment.PaymentService.
func (s *PaymentServiceImpl) UpdateStatus(ctx context.Context, req payment.UpdatePaymentRequest) (payment.Payment, error) {
	if err := req.Validate(); err != nil {
		return payment.Payment{}, err
	}

	p, err := s.Get(ctx, req.ID)
	if err != nil {
		return payment.Payment{}, err
	}

	p.Status = payment.Status(req.Status)
	if req.Notes != nil {
		p.Notes = req.Notes
	}

	updated, err := s.paymentRepo.Update(ctx, p)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		return payment.Payment{}, fmt.Errorf("failed to update payment: %w", err)
	}

	if err := s.syncer.SyncEntity(ctx, updated); err != nil {
		return updated, fmt.Errorf("failed to sync payment: %w", err)
	}
	return updated, nil
}

// Get implements payment.PaymentService.
func (s *PaymentServiceImpl) Get(ctx context.Context, id string) (payment.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		return payment.Payment{}, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// List implements payment.PaymentService.
func (s *PaymentServiceImpl) List(ctx context.Context, filter payment.PaymentFilter) ([]payment.Payment, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// CalculateWages implements payment.PaymentService.
// A full day earns the daily wage, a half day half of it, absences nothing.
func (s *PaymentServiceImpl) CalculateWages(ctx context.Context, req payment.CalculateWagesRequest) (payment.WageSummary, error) {
	if err := req.Validate(); err != nil {
		return payment.WageSummary{}, err
	}

	w, err := s.getWorker(ctx, req.WorkerID)
	if err != nil {
		return payment.WageSummary{}, err
	}

	records, err := s.attendanceRepo.List(ctx, attendance.AttendanceFilter{
		WorkerID:  &req.WorkerID,
		StartDate: &req.StartDate,
		EndDate:   &req.EndDate,
	})
	if err != nil {
		return payment.WageSummary{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	summary := payment.WageSummary{
		WorkerID:   w.ID,
		WorkerName: w.Name,
		DailyWage:  w.DailyWage,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	}
	for _, a := range records {
		switch a.Status {
		case attendance.StatusFull:
			summary.FullDays++
		case attendance.StatusHalf:
			summary.HalfDays++
		}
	}
	summary.TotalDays = summary.FullDays + summary.HalfDays

	fullPay := w.DailyWage.Mul(decimal.NewFromInt(int64(summary.FullDays)))
	halfPay := w.DailyWage.Mul(halfDay).Mul(decimal.NewFromInt(int64(summary.HalfDays)))
	summary.TotalWages = fullPay.Add(halfPay)

	return summary, nil
}

func (s *PaymentServiceImpl) getWorker(ctx context.Context, id string) (worker.Worker, error) {
	w, err := s.workerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return worker.Worker{}, payment.ErrWorkerNotFound
		}
		return worker.Worker{}, fmt.Errorf("failed to get worker: %w", err)
	}
	return w, nil
}

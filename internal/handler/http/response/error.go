package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/attendance"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/payment"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/validator"
	"github.com/cmlabs-hris/sitecrew-go/internal/service/file"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Worker domain errors
	case errors.Is(err, worker.ErrWorkerNotFound):
		NotFound(w, "Worker not found")
	case errors.Is(err, worker.ErrProjectNotFound):
		NotFound(w, "Assigned project not found")
	case errors.Is(err, worker.ErrWorkerInactive):
		Conflict(w, "Worker is already inactive")

	// Project domain errors
	case errors.Is(err, project.ErrProjectNotFound):
		NotFound(w, "Project not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrWorkerNotFound):
		NotFound(w, "Worker not found")
	case errors.Is(err, attendance.ErrProjectNotFound):
		NotFound(w, "Project not found")

	// Payment domain errors
	case errors.Is(err, payment.ErrPaymentNotFound):
		NotFound(w, "Payment not found")
	case errors.Is(err, payment.ErrWorkerNotFound):
		NotFound(w, "Worker not found")

	// Upload errors
	case errors.Is(err, file.ErrInvalidFileType):
		BadRequest(w, "Only image files are allowed", nil)
	case errors.Is(err, file.ErrEmptyFile):
		BadRequest(w, "Photo file is empty", nil)
	case errors.Is(err, file.ErrFileTooLarge):
		PayloadTooLarge(w, "Photo exceeds the 5MB limit")

	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, jwt.ErrTokenRevoked):
		Unauthorized(w, err.Error())

	case errors.Is(err, store.ErrNotFound):
		NotFound(w, "Record not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

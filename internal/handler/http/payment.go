package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/payment"
	"github.com/cmlabs-hris/sitecrew-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PaymentHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	// Update changes status and notes only
	Update(w http.ResponseWriter, r *http.Request)
	CalculateWages(w http.ResponseWriter, r *http.Request)
}

type paymentHandlerImpl struct {
	paymentService payment.PaymentService
}

func NewPaymentHandler(paymentService payment.PaymentService) PaymentHandler {
	return &paymentHandlerImpl{paymentService: paymentService}
}

// List handles GET /api/payments?worker_id=&project_id=&status=
func (h *paymentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := payment.PaymentFilter{
		WorkerID:  optionalQuery(r, "worker_id"),
		ProjectID: optionalQuery(r, "project_id"),
		Status:    optionalQuery(r, "status"),
	}

	results, err := h.paymentService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, &response.Meta{TotalItems: int64(len(results))})
}

func (h *paymentHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req payment.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.paymentService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payment created successfully", result)
}

func (h *paymentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.paymentService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *paymentHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req payment.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.paymentService.UpdateStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment updated successfully", result)
}

// CalculateWages handles GET /api/calculate-wages?worker_id=&start_date=&end_date=
func (h *paymentHandlerImpl) CalculateWages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := payment.CalculateWagesRequest{
		WorkerID:  query.Get("worker_id"),
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
	}

	missing := map[string]string{}
	for key, value := range map[string]string{"worker_id": req.WorkerID, "start_date": req.StartDate, "end_date": req.EndDate} {
		if value == "" {
			missing[key] = key + " is required"
		}
	}
	if len(missing) > 0 {
		response.BadRequest(w, "worker_id, start_date and end_date are required", missing)
		return
	}

	result, err := h.paymentService.CalculateWages(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

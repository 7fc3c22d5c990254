package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/sovannra/microfin/internal/domain"
	"github.com/sovannra/microfin/internal/service"
	"github.com/sovannra/microfin/pkg/response"
)

// BillingHandler serves loan accounts, the collections board and payments.
type BillingHandler struct {
	service   *service.BillingService
	validator *validator.Validate
}

func NewBillingHandler(service *service.BillingService) *BillingHandler {
	return &BillingHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Disburse opens a loan account for an approved application.
// POST /api/v1/loan-applications/{appId}/disburse
func (h *BillingHandler) Disburse(w http.ResponseWriter, r *http.Request) {
	appID, err := pathID(r, "appId")
	if err != nil {
		response.BadRequest(w, "invalid application id", err)
		return
	}

	var request domain.DisburseRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			response.BadRequest(w, "invalid request body", err)
			return
		}
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	result, err := h.service.Disburse(r.Context(), appID, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, result)
}

// MakePayment records a payment and allocates it against the oldest
// outstanding installments.
// POST /api/v1/payments
func (h *BillingHandler) MakePayment(w http.ResponseWriter, r *http.Request) {
	var request domain.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	result, err := h.service.ApplyPayment(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, result)
}

// GetBoard serves the payment kanban board.
// GET /api/v1/payment-schedules?branch_id=&status=&date_filter=
func (h *BillingHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	filter := domain.BoardFilter{
		BranchID:   r.URL.Query().Get("branch_id"),
		Status:     r.URL.Query().Get("status"),
		DateFilter: r.URL.Query().Get("date_filter"),
	}

	switch filter.DateFilter {
	case "", domain.DateFilterToday, domain.DateFilterOverdue, domain.DateFilterUpcoming:
	default:
		response.BadRequest(w, "date_filter must be one of today, overdue, upcoming", nil)
		return
	}

	entries, err := h.service.GetBoard(r.Context(), filter, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, entries)
}

// GetSchedule serves a loan's repayment schedule with derived statuses.
// GET /api/v1/loans/{loanId}/schedule
func (h *BillingHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	entries, err := h.service.GetSchedule(r.Context(), loanID, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, entries)
}

// ListAccounts serves active loan accounts.
// GET /api/v1/loan-accounts?branch_id=
func (h *BillingHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context(), r.URL.Query().Get("branch_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, accounts)
}

// GetOutstanding serves a loan's balance summary.
// GET /api/v1/loans/{loanId}/outstanding
func (h *BillingHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	outstanding, err := h.service.GetOutstanding(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, outstanding)
}

// PaymentHistory serves the payment ledger for a loan.
// GET /api/v1/payments/{loanId}
func (h *BillingHandler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	payments, err := h.service.PaymentHistory(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, payments)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

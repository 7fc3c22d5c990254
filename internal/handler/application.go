package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sovannra/microfin/internal/domain"
	"github.com/sovannra/microfin/internal/service"
	"github.com/sovannra/microfin/pkg/response"
)

// ApplicationHandler serves the product catalog and loan applications.
type ApplicationHandler struct {
	service   *service.ApplicationService
	validator *validator.Validate
}

func NewApplicationHandler(service *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		service:   service,
		validator: validator.New(),
	}
}

// ListProducts serves the loan product catalog.
// GET /api/v1/loan-products
func (h *ApplicationHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, products)
}

// CreateApplication files a loan application.
// POST /api/v1/loan-applications
func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	app, err := h.service.CreateApplication(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, app)
}

// GetApplication serves one application with client and product context.
// GET /api/v1/loan-applications/{appId}
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	appID, err := pathID(r, "appId")
	if err != nil {
		response.BadRequest(w, "invalid application id", err)
		return
	}

	detail, err := h.service.GetApplication(r.Context(), appID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, detail)
}

// ListApplications serves applications filtered by branch and status.
// GET /api/v1/loan-applications?branch_id=&status=
func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.ListApplications(r.Context(),
		r.URL.Query().Get("branch_id"),
		r.URL.Query().Get("status"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, apps)
}

// UpdateApplication updates the mutable fields of an application.
// PUT /api/v1/loan-applications/{appId}
func (h *ApplicationHandler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	appID, err := pathID(r, "appId")
	if err != nil {
		response.BadRequest(w, "invalid application id", err)
		return
	}

	var request domain.UpdateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	detail, err := h.service.UpdateApplication(r.Context(), appID, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, detail)
}

// DeleteApplication removes a draft or rejected application.
// DELETE /api/v1/loan-applications/{appId}
func (h *ApplicationHandler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	appID, err := pathID(r, "appId")
	if err != nil {
		response.BadRequest(w, "invalid application id", err)
		return
	}

	if err := h.service.DeleteApplication(r.Context(), appID); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "loan application deleted"})
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sovannra/microfin/internal/domain"
	"github.com/sovannra/microfin/internal/service"
	"github.com/sovannra/microfin/pkg/response"
)

// ClientHandler serves borrower KYC and socio-economic endpoints.
type ClientHandler struct {
	service   *service.ClientService
	validator *validator.Validate
}

func NewClientHandler(service *service.ClientService) *ClientHandler {
	return &ClientHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreateClient registers a new borrower.
// POST /api/v1/clients
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	client, err := h.service.CreateClient(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, client)
}

// GetClient serves one borrower profile.
// GET /api/v1/clients/{clientId}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "clientId")
	if err != nil {
		response.BadRequest(w, "invalid client id", err)
		return
	}

	client, err := h.service.GetClient(r.Context(), clientID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, client)
}

// ListClients serves borrower profiles, optionally per branch.
// GET /api/v1/clients?branch_id=
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context(), r.URL.Query().Get("branch_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, clients)
}

// UpdateClient updates the mutable KYC fields.
// PUT /api/v1/clients/{clientId}
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "clientId")
	if err != nil {
		response.BadRequest(w, "invalid client id", err)
		return
	}

	var request domain.UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	client, err := h.service.UpdateClient(r.Context(), clientID, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, client)
}

// DeleteClient removes a borrower without active loans.
// DELETE /api/v1/clients/{clientId}
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "clientId")
	if err != nil {
		response.BadRequest(w, "invalid client id", err)
		return
	}

	if err := h.service.DeleteClient(r.Context(), clientID); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "client deleted"})
}

// GetSocioEco serves the socio-economic profile.
// GET /api/v1/clients/{clientId}/socio-eco
func (h *ClientHandler) GetSocioEco(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "clientId")
	if err != nil {
		response.BadRequest(w, "invalid client id", err)
		return
	}

	socio, err := h.service.GetSocioEco(r.Context(), clientID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, socio)
}

// UpsertSocioEco creates or updates the socio-economic profile.
// PUT /api/v1/clients/{clientId}/socio-eco
func (h *ClientHandler) UpsertSocioEco(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "clientId")
	if err != nil {
		response.BadRequest(w, "invalid client id", err)
		return
	}

	var request domain.UpsertSocioEcoRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	socio, err := h.service.UpsertSocioEco(r.Context(), clientID, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, socio)
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"github.com/solhaus/portal-api/internal/service"
	"go.uber.org/zap"
)

type LeadHandler struct {
	leadService *service.LeadService
	logger      *zap.Logger
}

func NewLeadHandler(leadService *service.LeadService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		logger:      logger,
	}
}

// @Summary List leads
// @Tags Leads
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} domain.PaginatedResponse
// @Router /leads [get]
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	leads, total, err := h.leadService.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}

	respondJSON(w, http.StatusOK, paginated(leads, total, page, pageSize))
}

// @Summary Create lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.CreateLeadRequest true "Lead data"
// @Success 201 {object} domain.LeadDTO
// @Router /leads [post]
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create lead", zap.Error(err))
		h.handleLeadError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/leads/"+lead.ID.String())
	respondJSON(w, http.StatusCreated, lead)
}

// @Summary Get lead
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.LeadDTO
// @Router /leads/{id} [get]
func (h *LeadHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	lead, err := h.leadService.GetByID(r.Context(), id)
	if err != nil {
		h.handleLeadError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Update lead status
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.UpdateLeadStatusRequest true "Target status"
// @Success 200 {object} domain.LeadDTO
// @Router /leads/{id}/status [patch]
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	var req domain.UpdateLeadStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update lead status", zap.Error(err), zap.String("lead_id", id.String()))
		h.handleLeadError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) handleLeadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLeadNotFound):
		respondWithError(w, http.StatusNotFound, "Lead not found")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

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

type FollowUpHandler struct {
	followUpService *service.FollowUpService
	logger          *zap.Logger
}

func NewFollowUpHandler(followUpService *service.FollowUpService, logger *zap.Logger) *FollowUpHandler {
	return &FollowUpHandler{
		followUpService: followUpService,
		logger:          logger,
	}
}

// @Summary Schedule follow-ups
// @Description Schedules a batch of follow-up reminders for a quote. At most one
// @Description pending batch may exist per quote.
// @Tags FollowUps
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.ScheduleFollowUpsRequest false "Scheduling overrides"
// @Success 201 {array} domain.FollowUpEntryDTO
// @Failure 409 {object} domain.APIError "A pending batch already exists"
// @Router /quotes/{id}/followups [post]
func (h *FollowUpHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	var req domain.ScheduleFollowUpsRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	entries, err := h.followUpService.Schedule(r.Context(), quoteID, &req)
	if err != nil {
		h.logger.Error("failed to schedule follow-ups", zap.Error(err), zap.String("quote_id", quoteID.String()))
		h.handleFollowUpError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entries)
}

// @Summary List follow-ups
// @Tags FollowUps
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {array} domain.FollowUpEntryDTO
// @Router /quotes/{id}/followups [get]
func (h *FollowUpHandler) ListByQuote(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	entries, err := h.followUpService.ListByQuote(r.Context(), quoteID)
	if err != nil {
		h.logger.Error("failed to list follow-ups", zap.Error(err), zap.String("quote_id", quoteID.String()))
		h.handleFollowUpError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

func (h *FollowUpHandler) handleFollowUpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrQuoteNotFound):
		respondWithError(w, http.StatusNotFound, "Quote not found")
	case errors.Is(err, service.ErrFollowUpsPending):
		respondWithError(w, http.StatusConflict, "A pending follow-up batch already exists for this quote")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

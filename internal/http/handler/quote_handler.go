package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"github.com/solhaus/portal-api/internal/service"
	"go.uber.org/zap"
)

type QuoteHandler struct {
	quoteService    *service.QuoteService
	followUpService *service.FollowUpService
	logger          *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, followUpService *service.FollowUpService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService:    quoteService,
		followUpService: followUpService,
		logger:          logger,
	}
}

// @Summary List quotes
// @Tags Quotes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status" Enums(draft, sent, viewed, pending_approval, accepted, declined)
// @Success 200 {object} domain.PaginatedResponse
// @Router /quotes [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	var status *domain.QuoteStatus
	if s := r.URL.Query().Get("status"); s != "" {
		qs := domain.QuoteStatus(s)
		if !qs.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &qs
	}

	quotes, total, err := h.quoteService.List(r.Context(), page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list quotes")
		return
	}

	respondJSON(w, http.StatusOK, paginated(quotes, total, page, pageSize))
}

// @Summary Create quote
// @Description Creates a quote in draft status. Each item is validated against the
// @Description product catalog and priced; totals are computed server-side.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body domain.CreateQuoteRequest true "Quote data"
// @Success 201 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError "Validation or configuration error"
// @Router /quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create quote", zap.Error(err))
		h.handleQuoteError(w, err)
		return
	}

	// Follow-up reminders are scheduled off the request path so a slow
	// write never delays the quote response
	go h.scheduleFollowUps(quote.ID, req.LeadID)

	w.Header().Set("Location", "/api/v1/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, quote)
}

func (h *QuoteHandler) scheduleFollowUps(quoteID uuid.UUID, leadID *uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.followUpService.Schedule(ctx, quoteID, &domain.ScheduleFollowUpsRequest{LeadID: leadID})
	if err != nil && !errors.Is(err, service.ErrFollowUpsPending) {
		h.logger.Warn("failed to schedule follow-ups for new quote",
			zap.Error(err), zap.String("quote_id", quoteID.String()))
	}
}

// @Summary Get quote
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		h.handleQuoteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// @Summary Update quote items
// @Description Replaces the quote's line items and recomputes totals. Only allowed
// @Description before the client has accepted.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.UpdateQuoteItemsRequest true "Replacement items"
// @Success 200 {object} domain.QuoteDTO
// @Router /quotes/{id}/items [put]
func (h *QuoteHandler) UpdateItems(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	var req domain.UpdateQuoteItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.UpdateItems(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update quote items", zap.Error(err), zap.String("quote_id", id.String()))
		h.handleQuoteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// @Summary Send quote
// @Description Transitions a draft quote to sent, assigning its quote number.
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO
// @Failure 409 {object} domain.APIError "Quote is not in draft status"
// @Router /quotes/{id}/send [post]
func (h *QuoteHandler) Send(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.quoteService.Send)
}

// @Summary Mark quote viewed
// @Description Records the first client view of a sent quote. A no-op in any
// @Description other status.
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO
// @Router /quotes/{id}/view [post]
func (h *QuoteHandler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.quoteService.MarkViewed)
}

// @Summary Client accepts quote
// @Description Moves a sent or viewed quote to pending_approval. Repeating the
// @Description call while pending is a no-op.
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO
// @Failure 409 {object} domain.APIError "Quote cannot be accepted from its current status"
// @Router /quotes/{id}/accept [post]
func (h *QuoteHandler) ClientAccept(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.quoteService.ClientAccept)
}

// @Summary Confirm acceptance
// @Description Staff confirmation that moves a pending_approval quote to accepted
// @Description and requests the approval drawing.
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO
// @Failure 409 {object} domain.APIError "Quote is not pending approval"
// @Router /quotes/{id}/confirm [post]
func (h *QuoteHandler) ConfirmAcceptance(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.quoteService.ConfirmAcceptance)
}

// @Summary Decline quote
// @Description Declines the quote, cancels pending follow-ups and marks the
// @Description originating lead as lost.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.DeclineQuoteRequest false "Decline reason"
// @Success 200 {object} domain.QuoteDTO
// @Router /quotes/{id}/decline [post]
func (h *QuoteHandler) Decline(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	var req domain.DeclineQuoteRequest
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

	quote, err := h.quoteService.Decline(r.Context(), id, req.Reason)
	if err != nil {
		h.logger.Error("failed to decline quote", zap.Error(err), zap.String("quote_id", id.String()))
		h.handleQuoteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// @Summary Update quote status
// @Description Applies a status transition by name. Dispatches to the same
// @Description lifecycle rules as the dedicated endpoints.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.UpdateQuoteStatusRequest true "Target status"
// @Success 200 {object} domain.QuoteDTO
// @Router /quotes/{id}/status [patch]
func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	var req domain.UpdateQuoteStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if !req.Status.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid quote status")
		return
	}

	quote, err := h.quoteService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update quote status", zap.Error(err), zap.String("quote_id", id.String()))
		h.handleQuoteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// lifecycle runs a parameterless quote transition shared by the action endpoints
func (h *QuoteHandler) lifecycle(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) (*domain.QuoteDTO, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	quote, err := fn(r.Context(), id)
	if err != nil {
		h.logger.Error("quote transition failed", zap.Error(err), zap.String("quote_id", id.String()))
		h.handleQuoteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) handleQuoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrQuoteNotFound):
		respondWithError(w, http.StatusNotFound, "Quote not found")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, "Quote status does not allow this transition")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

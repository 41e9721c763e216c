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

type DrawingHandler struct {
	drawingService *service.DrawingService
	logger         *zap.Logger
}

func NewDrawingHandler(drawingService *service.DrawingService, logger *zap.Logger) *DrawingHandler {
	return &DrawingHandler{
		drawingService: drawingService,
		logger:         logger,
	}
}

// @Summary Create approval drawing
// @Description Creates an approval drawing seeded from the quote's primary item.
// @Tags Drawings
// @Produce json
// @Param id path string true "Quote ID"
// @Success 201 {object} domain.ApprovalDrawingDTO
// @Failure 409 {object} domain.APIError "Quote is not accepted"
// @Router /quotes/{id}/drawing [post]
func (h *DrawingHandler) CreateForQuote(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	drawing, err := h.drawingService.CreateForQuote(r.Context(), quoteID)
	if err != nil {
		h.logger.Error("failed to create drawing", zap.Error(err), zap.String("quote_id", quoteID.String()))
		h.handleDrawingError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, drawing)
}

// @Summary Get active drawing
// @Tags Drawings
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.ApprovalDrawingDTO
// @Router /quotes/{id}/drawing [get]
func (h *DrawingHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	drawing, err := h.drawingService.GetActive(r.Context(), quoteID)
	if err != nil {
		h.handleDrawingError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, drawing)
}

// @Summary Update drawing
// @Description Updates drawing dimensions and finishes. Changes are mirrored back
// @Description into the quote's primary item and totals are re-priced.
// @Tags Drawings
// @Accept json
// @Produce json
// @Param id path string true "Drawing ID"
// @Param request body domain.UpdateDrawingRequest true "Drawing changes"
// @Success 200 {object} domain.ApprovalDrawingDTO
// @Failure 409 {object} domain.APIError "Drawing is signed and frozen"
// @Router /drawings/{id} [patch]
func (h *DrawingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID: must be a valid UUID")
		return
	}

	var req domain.UpdateDrawingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	drawing, err := h.drawingService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update drawing", zap.Error(err), zap.String("drawing_id", id.String()))
		h.handleDrawingError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, drawing)
}

// @Summary Send drawing for signature
// @Tags Drawings
// @Produce json
// @Param id path string true "Drawing ID"
// @Success 200 {object} domain.ApprovalDrawingDTO
// @Failure 409 {object} domain.APIError "Drawing is signed and frozen"
// @Router /drawings/{id}/send [post]
func (h *DrawingHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID: must be a valid UUID")
		return
	}

	drawing, err := h.drawingService.Send(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to send drawing", zap.Error(err), zap.String("drawing_id", id.String()))
		h.handleDrawingError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, drawing)
}

// @Summary Sign drawing
// @Description Records the customer signature, creates the order and tracking
// @Description records if missing, and advances the portal stage. Signing an
// @Description already-signed drawing is a no-op.
// @Tags Drawings
// @Accept json
// @Produce json
// @Param id path string true "Drawing ID"
// @Param request body domain.SignDrawingRequest true "Signature data"
// @Success 200 {object} domain.SignDrawingResponse
// @Failure 409 {object} domain.APIError "Drawing has not been sent for signature"
// @Router /drawings/{id}/sign [post]
func (h *DrawingHandler) Sign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID: must be a valid UUID")
		return
	}

	var req domain.SignDrawingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.drawingService.Sign(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to sign drawing", zap.Error(err), zap.String("drawing_id", id.String()))
		h.handleDrawingError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Get order tracking
// @Tags Orders
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.OrderTrackingDTO
// @Router /quotes/{id}/tracking [get]
func (h *DrawingHandler) GetTracking(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	tracking, err := h.drawingService.GetTracking(r.Context(), quoteID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, "No order tracking exists for this quote")
			return
		}
		h.logger.Error("failed to get order tracking", zap.Error(err), zap.String("quote_id", quoteID.String()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, tracking)
}

func (h *DrawingHandler) handleDrawingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDrawingNotFound):
		respondWithError(w, http.StatusNotFound, "Drawing not found")
	case errors.Is(err, service.ErrQuoteNotFound):
		respondWithError(w, http.StatusNotFound, "Quote not found")
	case errors.Is(err, service.ErrQuoteNotAccepted):
		respondWithError(w, http.StatusConflict, "Quote must be accepted before a drawing can be created")
	case errors.Is(err, service.ErrDrawingFrozen):
		respondWithError(w, http.StatusConflict, "Drawing is signed and can no longer be modified")
	case errors.Is(err, service.ErrDrawingNotSent):
		respondWithError(w, http.StatusConflict, "Drawing must be sent before it can be signed")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

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

type ContractHandler struct {
	contractService *service.ContractService
	logger          *zap.Logger
}

func NewContractHandler(contractService *service.ContractService, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		logger:          logger,
	}
}

// @Summary Sign contract
// @Description Records the contract signature for an accepted quote. Creates the
// @Description contract, the 50% advance payment and the order in one transaction.
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.SignContractRequest true "Signature data"
// @Success 201 {object} domain.SignContractResponse
// @Failure 409 {object} domain.APIError "Quote not accepted or contract already exists"
// @Router /quotes/{id}/contract/sign [post]
func (h *ContractHandler) Sign(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	var req domain.SignContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.contractService.SignContract(r.Context(), quoteID, &req, r.RemoteAddr, r.UserAgent())
	if err != nil {
		h.logger.Error("failed to sign contract", zap.Error(err), zap.String("quote_id", quoteID.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// @Summary Get contract
// @Tags Contracts
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.ContractDTO
// @Router /quotes/{id}/contract [get]
func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	contract, err := h.contractService.GetContract(r.Context(), quoteID)
	if err != nil {
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// @Summary Create balance payment
// @Description Issues the second 50% payment once the advance has settled.
// @Tags Payments
// @Produce json
// @Param id path string true "Quote ID"
// @Success 201 {object} domain.PaymentDTO
// @Failure 409 {object} domain.APIError "Advance not settled or balance already exists"
// @Router /quotes/{id}/payments/balance [post]
func (h *ContractHandler) CreateBalancePayment(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	payment, err := h.contractService.CreateBalancePayment(r.Context(), quoteID)
	if err != nil {
		h.logger.Error("failed to create balance payment", zap.Error(err), zap.String("quote_id", quoteID.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, payment)
}

// @Summary List payments
// @Tags Payments
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {array} domain.PaymentDTO
// @Router /quotes/{id}/payments [get]
func (h *ContractHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	payments, err := h.contractService.ListPayments(r.Context(), quoteID)
	if err != nil {
		h.logger.Error("failed to list payments", zap.Error(err), zap.String("quote_id", quoteID.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, payments)
}

func (h *ContractHandler) handleContractError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrQuoteNotFound):
		respondWithError(w, http.StatusNotFound, "Quote not found")
	case errors.Is(err, service.ErrContractNotFound):
		respondWithError(w, http.StatusNotFound, "Contract not found")
	case errors.Is(err, service.ErrQuoteNotAccepted):
		respondWithError(w, http.StatusConflict, "Quote must be accepted before the contract can be signed")
	case errors.Is(err, service.ErrContractExists):
		respondWithError(w, http.StatusConflict, "A contract already exists for this quote")
	case errors.Is(err, service.ErrAdvanceNotCompleted):
		respondWithError(w, http.StatusConflict, "Advance payment has not been settled")
	case errors.Is(err, service.ErrBalanceExists):
		respondWithError(w, http.StatusConflict, "A balance payment already exists for this quote")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

package service

import "errors"

// Common service errors
var (
	// ErrQuoteNotFound is returned when a quote is not found
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrDrawingNotFound is returned when an approval drawing is not found
	ErrDrawingNotFound = errors.New("approval drawing not found")

	// ErrContractNotFound is returned when a contract is not found
	ErrContractNotFound = errors.New("contract not found")

	// ErrPaymentNotFound is returned when a payment is not found
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrOrderNotFound is returned when an order is not found
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition is returned on a quote status transition the
	// state machine does not allow
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrQuoteNotAccepted is returned when contract signature is attempted
	// before the quote reaches accepted
	ErrQuoteNotAccepted = errors.New("quote is not accepted")

	// ErrContractExists is returned when a quote already has a contract
	ErrContractExists = errors.New("contract already exists for quote")

	// ErrAdvanceNotCompleted is returned when the balance payment is
	// requested before the advance payment has completed
	ErrAdvanceNotCompleted = errors.New("advance payment is not completed")

	// ErrBalanceExists is returned when a balance payment already exists
	ErrBalanceExists = errors.New("balance payment already exists for quote")

	// ErrDrawingNotSent is returned when a sign request arrives for a
	// drawing whose status is not exactly "sent"
	ErrDrawingNotSent = errors.New("approval drawing has not been sent for signature")

	// ErrDrawingFrozen is returned when an edit is attempted on a signed drawing
	ErrDrawingFrozen = errors.New("approval drawing is signed and cannot be edited")

	// ErrFollowUpsPending is returned when a pending follow-up batch
	// already exists for the quote
	ErrFollowUpsPending = errors.New("pending follow-up batch already exists for quote")
)

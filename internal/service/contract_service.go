package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/catalog"
	"github.com/solhaus/portal-api/internal/domain"
	"github.com/solhaus/portal-api/internal/mapper"
	"github.com/solhaus/portal-api/internal/notify"
	"github.com/solhaus/portal-api/internal/repository"
	"github.com/solhaus/portal-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContractService issues the contract, the advance payment and the order
// when an accepted quote is signed.
type ContractService struct {
	quoteRepo    *repository.QuoteRepository
	contractRepo *repository.ContractRepository
	paymentRepo  *repository.PaymentRepository
	orderRepo    *repository.OrderRepository
	numberSeq    *NumberSequenceService
	store        storage.Storage
	notifier     *notify.Queue
	logger       *zap.Logger
	db           *gorm.DB
}

func NewContractService(
	quoteRepo *repository.QuoteRepository,
	contractRepo *repository.ContractRepository,
	paymentRepo *repository.PaymentRepository,
	orderRepo *repository.OrderRepository,
	numberSeq *NumberSequenceService,
	store storage.Storage,
	notifier *notify.Queue,
	logger *zap.Logger,
	db *gorm.DB,
) *ContractService {
	return &ContractService{
		quoteRepo:    quoteRepo,
		contractRepo: contractRepo,
		paymentRepo:  paymentRepo,
		orderRepo:    orderRepo,
		numberSeq:    numberSeq,
		store:        store,
		notifier:     notifier,
		logger:       logger,
		db:           db,
	}
}

// SignContract creates the contract, the advance payment (half of the
// grand total) and the order in one transaction. The quote must be
// accepted and must not already have a contract.
func (s *ContractService) SignContract(ctx context.Context, quoteID uuid.UUID, req *domain.SignContractRequest, ipAddress, userAgent string) (*domain.SignContractResponse, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status != domain.QuoteStatusAccepted {
		return nil, fmt.Errorf("%w: status is %s", ErrQuoteNotAccepted, quote.Status)
	}

	existing, err := s.contractRepo.GetByQuote(ctx, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing contract: %w", err)
	}
	if existing != nil {
		return nil, ErrContractExists
	}

	signaturePath, err := storage.SaveSignature(ctx, s.store, req.SignatureImage)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	// The drawing path may already have created the order; both
	// signature paths converge on one order per quote.
	existingOrder, err := s.orderRepo.GetByQuote(ctx, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check order: %w", err)
	}

	var order *domain.Order
	if existingOrder != nil {
		order = existingOrder
	} else {
		orderNumber, err := s.numberSeq.GenerateOrderNumber(ctx)
		if err != nil {
			return nil, err
		}
		order = &domain.Order{
			OrderNumber: orderNumber,
			QuoteID:     quote.ID,
			ClientName:  quote.ClientName,
			ClientEmail: quote.ClientEmail,
		}
	}

	advanceAmount := catalog.Round2(quote.GrandTotal * 0.5)

	contract := &domain.Contract{
		QuoteID:       quote.ID,
		SignerName:    req.SignerName,
		SignaturePath: signaturePath,
		IPAddress:     ipAddress,
		UserAgent:     userAgent,
		SignedAt:      time.Now().UTC(),
	}
	payment := &domain.Payment{
		QuoteID:     quote.ID,
		ClientName:  quote.ClientName,
		Amount:      advanceAmount,
		PaymentType: domain.PaymentTypeAdvance,
		Status:      domain.PaymentStatusPending,
		ExternalRef: fmt.Sprintf("%s-D1", order.OrderNumber),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(contract).Error; err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}
		payment.ContractID = &contract.ID
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to create advance payment: %w", err)
		}
		order.ContractID = &contract.ID
		order.PaymentID = &payment.ID
		if existingOrder != nil {
			if err := tx.Model(&domain.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
				"contract_id": contract.ID,
				"payment_id":  payment.ID,
			}).Error; err != nil {
				return fmt.Errorf("failed to link order to contract: %w", err)
			}
		} else if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return tx.Model(&domain.Quote{}).Where("id = ?", quote.ID).
			Update("portal_stage", domain.PortalStageDeposit1Pending).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Enqueue(notify.Message{
		Event:   notify.EventContractSigned,
		Subject: fmt.Sprintf("Contract signed for %s", quote.QuoteNumber),
		Body:    fmt.Sprintf("%s signed the contract for quote %s. Advance due: $%.2f. Order %s created.", req.SignerName, quote.QuoteNumber, advanceAmount, order.OrderNumber),
		Meta:    map[string]string{"quoteId": quote.ID.String(), "orderId": order.ID.String()},
	})

	s.logger.Info("contract signed",
		zap.String("quoteID", quote.ID.String()),
		zap.String("orderNumber", order.OrderNumber),
		zap.Float64("advanceAmount", advanceAmount))

	contractDTO := mapper.ToContractDTO(contract)
	paymentDTO := mapper.ToPaymentDTO(payment)
	orderDTO := mapper.ToOrderDTO(order)
	return &domain.SignContractResponse{
		Contract: &contractDTO,
		Payment:  &paymentDTO,
		Order:    &orderDTO,
	}, nil
}

// CreateBalancePayment creates the balance half of the quote's grand
// total. Preconditions, checked at call time: the advance payment has
// completed and no balance payment exists yet.
func (s *ContractService) CreateBalancePayment(ctx context.Context, quoteID uuid.UUID) (*domain.PaymentDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	advance, err := s.paymentRepo.GetByQuoteAndType(ctx, quote.ID, domain.PaymentTypeAdvance)
	if err != nil {
		return nil, fmt.Errorf("failed to check advance payment: %w", err)
	}
	if advance == nil || advance.Status != domain.PaymentStatusCompleted {
		return nil, ErrAdvanceNotCompleted
	}

	balance, err := s.paymentRepo.GetByQuoteAndType(ctx, quote.ID, domain.PaymentTypeBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to check balance payment: %w", err)
	}
	if balance != nil {
		return nil, ErrBalanceExists
	}

	order, err := s.orderRepo.GetByQuote(ctx, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	payment := &domain.Payment{
		QuoteID:     quote.ID,
		ContractID:  advance.ContractID,
		ClientName:  quote.ClientName,
		Amount:      catalog.Round2(quote.GrandTotal * 0.5),
		PaymentType: domain.PaymentTypeBalance,
		Status:      domain.PaymentStatusPending,
	}
	if order != nil {
		payment.ExternalRef = fmt.Sprintf("%s-D2", order.OrderNumber)
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create balance payment: %w", err)
	}

	if err := s.quoteRepo.UpdateFields(ctx, quote.ID, map[string]interface{}{
		"portal_stage": domain.PortalStageDeposit2Pending,
	}); err != nil {
		s.logger.Warn("failed to advance portal stage", zap.Error(err))
	}

	s.logger.Info("balance payment created",
		zap.String("quoteID", quote.ID.String()),
		zap.Float64("amount", payment.Amount))

	dto := mapper.ToPaymentDTO(payment)
	return &dto, nil
}

// GetContract returns the quote's contract
func (s *ContractService) GetContract(ctx context.Context, quoteID uuid.UUID) (*domain.ContractDTO, error) {
	contract, err := s.contractRepo.GetByQuote(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}
	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}

// ListPayments returns the quote's payments, oldest first
func (s *ContractService) ListPayments(ctx context.Context, quoteID uuid.UUID) ([]domain.PaymentDTO, error) {
	payments, err := s.paymentRepo.ListByQuote(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	dtos := make([]domain.PaymentDTO, 0, len(payments))
	for i := range payments {
		dtos = append(dtos, mapper.ToPaymentDTO(&payments[i]))
	}
	return dtos, nil
}

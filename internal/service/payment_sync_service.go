package service

import (
	"context"
	"fmt"

	"github.com/solhaus/portal-api/internal/domain"
	"github.com/solhaus/portal-api/internal/notify"
	"github.com/solhaus/portal-api/internal/repository"
	"go.uber.org/zap"
)

// SettlementSource reports which payment references have settled.
// Implemented by the finance ledger client.
type SettlementSource interface {
	SettledRefs(ctx context.Context, refs []string) ([]string, error)
}

// PaymentSyncService reconciles pending payments against the external
// settlement ledger. Payment status is mutated by the payment processor;
// this service reads the outcome back and advances fulfillment.
type PaymentSyncService struct {
	paymentRepo  *repository.PaymentRepository
	trackingRepo *repository.TrackingRepository
	quoteRepo    *repository.QuoteRepository
	ledger       SettlementSource
	notifier     *notify.Queue
	logger       *zap.Logger
}

func NewPaymentSyncService(
	paymentRepo *repository.PaymentRepository,
	trackingRepo *repository.TrackingRepository,
	quoteRepo *repository.QuoteRepository,
	ledger SettlementSource,
	notifier *notify.Queue,
	logger *zap.Logger,
) *PaymentSyncService {
	return &PaymentSyncService{
		paymentRepo:  paymentRepo,
		trackingRepo: trackingRepo,
		quoteRepo:    quoteRepo,
		ledger:       ledger,
		notifier:     notifier,
		logger:       logger,
	}
}

// SyncSettled marks pending payments completed when the ledger reports
// their reference settled, and advances order tracking past the matching
// deposit stage. Returns the number of payments completed.
func (s *PaymentSyncService) SyncSettled(ctx context.Context) (int, error) {
	pending, err := s.paymentRepo.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending payments: %w", err)
	}

	refs := make([]string, 0, len(pending))
	for i := range pending {
		if pending[i].ExternalRef != "" {
			refs = append(refs, pending[i].ExternalRef)
		}
	}
	if len(refs) == 0 {
		return 0, nil
	}

	settledRefs, err := s.ledger.SettledRefs(ctx, refs)
	if err != nil {
		return 0, fmt.Errorf("failed to query settlement ledger: %w", err)
	}
	settled := make(map[string]bool, len(settledRefs))
	for _, ref := range settledRefs {
		settled[ref] = true
	}

	completed := 0
	for i := range pending {
		payment := &pending[i]
		if payment.ExternalRef == "" || !settled[payment.ExternalRef] {
			continue
		}

		if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusCompleted); err != nil {
			s.logger.Error("failed to complete payment",
				zap.String("paymentID", payment.ID.String()),
				zap.Error(err))
			continue
		}
		completed++

		s.advanceFulfillment(ctx, payment)

		s.notifier.Enqueue(notify.Message{
			Event:   notify.EventPaymentSettled,
			Subject: fmt.Sprintf("Payment settled: %s", payment.ExternalRef),
			Body:    fmt.Sprintf("%s payment of $%.2f for %s settled", payment.PaymentType, payment.Amount, payment.ClientName),
			Meta:    map[string]string{"quoteId": payment.QuoteID.String()},
		})
	}

	return completed, nil
}

// advanceFulfillment moves order tracking and the portal stage past the
// deposit stage the settled payment covers. Failures are logged; the
// next sync pass will catch up.
func (s *PaymentSyncService) advanceFulfillment(ctx context.Context, payment *domain.Payment) {
	tracking, err := s.trackingRepo.GetByQuote(ctx, payment.QuoteID)
	if err != nil {
		s.logger.Warn("failed to load order tracking",
			zap.String("quoteID", payment.QuoteID.String()),
			zap.Error(err))
		return
	}

	var stage domain.TrackingStage
	var portalStage domain.PortalStage
	switch payment.PaymentType {
	case domain.PaymentTypeAdvance:
		stage = domain.TrackingStageInProduction
		portalStage = domain.PortalStageInProduction
	case domain.PaymentTypeBalance:
		stage = domain.TrackingStageComplete
		portalStage = domain.PortalStageComplete
	default:
		return
	}

	if tracking != nil {
		if err := s.trackingRepo.UpdateStage(ctx, tracking.ID, stage); err != nil {
			s.logger.Warn("failed to advance tracking stage",
				zap.String("trackingID", tracking.ID.String()),
				zap.Error(err))
		}
	}

	if err := s.quoteRepo.UpdateFields(ctx, payment.QuoteID, map[string]interface{}{
		"portal_stage": portalStage,
	}); err != nil {
		s.logger.Warn("failed to advance portal stage",
			zap.String("quoteID", payment.QuoteID.String()),
			zap.Error(err))
	}
}

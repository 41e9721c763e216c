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

// DrawingService maintains the approval drawing, a second configuration
// surface tied 1:1 to a quote. Edits propagate back into the quote
// header and its primary line item; signature freezes the drawing and
// creates the fulfillment records.
type DrawingService struct {
	drawingRepo  *repository.DrawingRepository
	quoteRepo    *repository.QuoteRepository
	orderRepo    *repository.OrderRepository
	trackingRepo *repository.TrackingRepository
	leadRepo     *repository.LeadRepository
	numberSeq    *NumberSequenceService
	store        storage.Storage
	notifier     *notify.Queue
	logger       *zap.Logger
	db           *gorm.DB
}

func NewDrawingService(
	drawingRepo *repository.DrawingRepository,
	quoteRepo *repository.QuoteRepository,
	orderRepo *repository.OrderRepository,
	trackingRepo *repository.TrackingRepository,
	leadRepo *repository.LeadRepository,
	numberSeq *NumberSequenceService,
	store storage.Storage,
	notifier *notify.Queue,
	logger *zap.Logger,
	db *gorm.DB,
) *DrawingService {
	return &DrawingService{
		drawingRepo:  drawingRepo,
		quoteRepo:    quoteRepo,
		orderRepo:    orderRepo,
		trackingRepo: trackingRepo,
		leadRepo:     leadRepo,
		numberSeq:    numberSeq,
		store:        store,
		notifier:     notifier,
		logger:       logger,
		db:           db,
	}
}

// CreateForQuote creates a new draft drawing seeded from the quote's
// primary item. A new drawing supersedes any earlier one; the latest
// drawing per quote is the active one.
func (s *DrawingService) CreateForQuote(ctx context.Context, quoteID uuid.UUID) (*domain.ApprovalDrawingDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	primary := quote.PrimaryItem()
	if primary == nil {
		return nil, fmt.Errorf("%w: quote has no items", ErrInvalidInput)
	}

	drawing := &domain.ApprovalDrawing{
		QuoteID:       quote.ID,
		Status:        domain.DrawingStatusDraft,
		OverallWidth:  primary.WidthIn,
		OverallHeight: primary.HeightIn,
		PanelCount:    primary.PanelCount,
		SlideDir:      domain.SlideDirectionLeft,
		InSwing:       domain.InSwingExterior,
		FrameColor:    primary.ExteriorFinish,
		HardwareColor: primary.HardwareFinish,
	}
	if err := s.drawingRepo.Create(ctx, drawing); err != nil {
		return nil, fmt.Errorf("failed to create drawing: %w", err)
	}

	s.logger.Info("approval drawing created",
		zap.String("drawingID", drawing.ID.String()),
		zap.String("quoteID", quote.ID.String()))

	dto := mapper.ToApprovalDrawingDTO(drawing)
	return &dto, nil
}

// GetActive returns the quote's active (latest) drawing
func (s *DrawingService) GetActive(ctx context.Context, quoteID uuid.UUID) (*domain.ApprovalDrawingDTO, error) {
	drawing, err := s.drawingRepo.GetActiveByQuote(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDrawingNotFound
		}
		return nil, fmt.Errorf("failed to get drawing: %w", err)
	}
	dto := mapper.ToApprovalDrawingDTO(drawing)
	return &dto, nil
}

// GetTracking returns the order tracking record for a quote
func (s *DrawingService) GetTracking(ctx context.Context, quoteID uuid.UUID) (*domain.OrderTrackingDTO, error) {
	tracking, err := s.trackingRepo.GetByQuote(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order tracking: %w", err)
	}
	if tracking == nil {
		return nil, ErrOrderNotFound
	}
	dto := mapper.ToOrderTrackingDTO(tracking)
	return &dto, nil
}

// Update edits a draft or sent drawing and mirrors the changed fields
// into the quote header and its primary item. The primary item is
// re-priced and totals are recomputed; the mirroring is last-write-wins.
func (s *DrawingService) Update(ctx context.Context, drawingID uuid.UUID, req *domain.UpdateDrawingRequest) (*domain.ApprovalDrawingDTO, error) {
	drawing, err := s.drawingRepo.GetByID(ctx, drawingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDrawingNotFound
		}
		return nil, fmt.Errorf("failed to get drawing: %w", err)
	}

	if drawing.Status == domain.DrawingStatusSigned {
		return nil, ErrDrawingFrozen
	}

	quote, err := s.quoteRepo.GetByID(ctx, drawing.QuoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	primary := quote.PrimaryItem()
	if primary == nil {
		return nil, fmt.Errorf("%w: quote has no items", ErrInvalidInput)
	}

	if req.OverallWidth != nil {
		drawing.OverallWidth = *req.OverallWidth
	}
	if req.OverallHeight != nil {
		drawing.OverallHeight = *req.OverallHeight
	}
	if req.PanelCount != nil {
		drawing.PanelCount = *req.PanelCount
	}
	if req.SlideDir != nil {
		if !req.SlideDir.IsValid() {
			return nil, fmt.Errorf("%w: invalid slide direction %s", ErrInvalidInput, *req.SlideDir)
		}
		drawing.SlideDir = *req.SlideDir
	}
	if req.InSwing != nil {
		drawing.InSwing = *req.InSwing
	}
	if req.FrameColor != nil {
		drawing.FrameColor = *req.FrameColor
	}
	if req.HardwareColor != nil {
		drawing.HardwareColor = *req.HardwareColor
	}

	// The edited pair must satisfy the same admissibility rule as quote
	// creation; the drawing is the second configuration surface, not a
	// way around it.
	product, err := catalog.Lookup(catalog.ProductKind(primary.ProductKind))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	limits := product.Limits()
	admissible := false
	for _, n := range catalog.PanelCountOptions(drawing.OverallWidth, limits.FrameOffset, limits.MinPanelWidth, limits.MaxPanelWidth) {
		if n == drawing.PanelCount {
			admissible = true
			break
		}
	}
	if !admissible {
		return nil, fmt.Errorf("%w: panel count %d not admissible for width %.1f", ErrInvalidInput, drawing.PanelCount, drawing.OverallWidth)
	}

	// Mirror the drawing into the primary item and re-price it
	primary.WidthIn = drawing.OverallWidth
	primary.HeightIn = drawing.OverallHeight
	primary.PanelCount = drawing.PanelCount
	primary.ExteriorFinish = drawing.FrameColor
	primary.HardwareFinish = drawing.HardwareColor

	// A layout code from the previous panel count cannot survive the edit
	if primary.PanelLayout != "" {
		found := false
		for _, l := range product.Layouts(primary.PanelCount) {
			if l.Code == primary.PanelLayout {
				found = true
				break
			}
		}
		if !found {
			primary.PanelLayout = ""
		}
	}

	total, err := catalog.PriceItem(catalog.ItemSpec{
		Kind:       catalog.ProductKind(primary.ProductKind),
		SystemType: primary.SystemType,
		WidthIn:    primary.WidthIn,
		HeightIn:   primary.HeightIn,
		PanelCount: primary.PanelCount,
		GlassType:  primary.GlassType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	primary.ItemTotal = total
	primary.Description = describeItem(primary)

	quote.Size = fmt.Sprintf("%.0f\" x %.0f\"", drawing.OverallWidth, drawing.OverallHeight)
	quote.Color = drawing.FrameColor
	applyTotals(quote)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(drawing).Error; err != nil {
			return fmt.Errorf("failed to update drawing: %w", err)
		}
		if err := tx.Save(primary).Error; err != nil {
			return fmt.Errorf("failed to update primary item: %w", err)
		}
		return tx.Model(&domain.Quote{}).Where("id = ?", quote.ID).Updates(map[string]interface{}{
			"size":        quote.Size,
			"color":       quote.Color,
			"subtotal":    quote.Subtotal,
			"tax":         quote.Tax,
			"grand_total": quote.GrandTotal,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("approval drawing updated",
		zap.String("drawingID", drawing.ID.String()),
		zap.String("quoteID", quote.ID.String()),
		zap.Float64("grandTotal", quote.GrandTotal))

	dto := mapper.ToApprovalDrawingDTO(drawing)
	return &dto, nil
}

// Send transitions a draft drawing to sent, making it signable.
// Re-sending an already sent drawing changes nothing.
func (s *DrawingService) Send(ctx context.Context, drawingID uuid.UUID) (*domain.ApprovalDrawingDTO, error) {
	drawing, err := s.drawingRepo.GetByID(ctx, drawingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDrawingNotFound
		}
		return nil, fmt.Errorf("failed to get drawing: %w", err)
	}

	switch drawing.Status {
	case domain.DrawingStatusDraft:
		drawing.Status = domain.DrawingStatusSent
		if err := s.drawingRepo.Update(ctx, drawing); err != nil {
			return nil, fmt.Errorf("failed to send drawing: %w", err)
		}
	case domain.DrawingStatusSent:
		// already sent
	case domain.DrawingStatusSigned:
		return nil, ErrDrawingFrozen
	}

	dto := mapper.ToApprovalDrawingDTO(drawing)
	return &dto, nil
}

// Sign records the customer signature on a sent drawing. Signed is
// terminal: re-signing is a silent no-op, and signing from any status
// other than sent is rejected. The first signature creates order
// tracking and the order, and advances the quote in one transaction.
func (s *DrawingService) Sign(ctx context.Context, drawingID uuid.UUID, req *domain.SignDrawingRequest) (*domain.SignDrawingResponse, error) {
	drawing, err := s.drawingRepo.GetByID(ctx, drawingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDrawingNotFound
		}
		return nil, fmt.Errorf("failed to get drawing: %w", err)
	}

	if drawing.Status == domain.DrawingStatusSigned {
		dto := mapper.ToApprovalDrawingDTO(drawing)
		return &domain.SignDrawingResponse{Drawing: &dto}, nil
	}
	if drawing.Status != domain.DrawingStatusSent {
		return nil, fmt.Errorf("%w: status is %s", ErrDrawingNotSent, drawing.Status)
	}

	quote, err := s.quoteRepo.GetByID(ctx, drawing.QuoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	signaturePath, err := storage.SaveSignature(ctx, s.store, req.SignatureImage)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	drawing.Status = domain.DrawingStatusSigned
	drawing.CustomerName = req.CustomerName
	drawing.SignaturePath = signaturePath
	drawing.SignedAt = &now

	deposit := catalog.Round2(quote.GrandTotal * 0.5)

	var tracking *domain.OrderTracking
	var order *domain.Order

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(drawing).Error; err != nil {
			return fmt.Errorf("failed to sign drawing: %w", err)
		}

		existing, err := s.trackingRepo.GetByQuote(ctx, quote.ID)
		if err != nil {
			return fmt.Errorf("failed to check order tracking: %w", err)
		}
		if existing != nil {
			tracking = existing
		} else {
			tracking = &domain.OrderTracking{
				QuoteID:        quote.ID,
				Stage:          domain.TrackingStageDeposit1Pending,
				Deposit1Amount: deposit,
				Deposit2Amount: deposit,
			}
			if err := tx.Create(tracking).Error; err != nil {
				return fmt.Errorf("failed to create order tracking: %w", err)
			}
		}

		existingOrder, err := s.orderRepo.GetByQuote(ctx, quote.ID)
		if err != nil {
			return fmt.Errorf("failed to check order: %w", err)
		}
		if existingOrder != nil {
			order = existingOrder
		} else {
			orderNumber, err := s.numberSeq.GenerateOrderNumber(ctx)
			if err != nil {
				return err
			}
			order = &domain.Order{
				OrderNumber: orderNumber,
				QuoteID:     quote.ID,
				ClientName:  quote.ClientName,
				ClientEmail: quote.ClientEmail,
			}
			if err := tx.Create(order).Error; err != nil {
				return fmt.Errorf("failed to create order: %w", err)
			}
		}

		if tracking.OrderID == nil {
			tracking.OrderID = &order.ID
			if err := tx.Model(&domain.OrderTracking{}).Where("id = ?", tracking.ID).
				Update("order_id", order.ID).Error; err != nil {
				return fmt.Errorf("failed to link tracking to order: %w", err)
			}
		}

		return tx.Model(&domain.Quote{}).Where("id = ?", quote.ID).
			Update("portal_stage", domain.PortalStageDeposit1Pending).Error
	})
	if err != nil {
		return nil, err
	}

	if quote.LeadID != nil {
		if err := s.leadRepo.UpdateStatus(ctx, *quote.LeadID, domain.LeadStatusOrder); err != nil {
			s.logger.Warn("failed to advance lead status", zap.Error(err))
		}
	}

	s.notifier.Enqueue(notify.Message{
		Event:   notify.EventDrawingSigned,
		Subject: fmt.Sprintf("Drawing approved for %s", quote.QuoteNumber),
		Body:    fmt.Sprintf("%s signed the approval drawing for quote %s. Order %s is awaiting the first deposit of $%.2f.", req.CustomerName, quote.QuoteNumber, order.OrderNumber, deposit),
		Meta:    map[string]string{"quoteId": quote.ID.String(), "orderId": order.ID.String()},
	})

	s.logger.Info("approval drawing signed",
		zap.String("drawingID", drawing.ID.String()),
		zap.String("quoteID", quote.ID.String()),
		zap.String("orderNumber", order.OrderNumber))

	drawingDTO := mapper.ToApprovalDrawingDTO(drawing)
	orderDTO := mapper.ToOrderDTO(order)
	trackingDTO := mapper.ToOrderTrackingDTO(tracking)
	return &domain.SignDrawingResponse{
		Drawing:  &drawingDTO,
		Order:    &orderDTO,
		Tracking: &trackingDTO,
	}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/catalog"
	"github.com/solhaus/portal-api/internal/domain"
	"github.com/solhaus/portal-api/internal/mapper"
	"github.com/solhaus/portal-api/internal/notify"
	"github.com/solhaus/portal-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuoteService struct {
	quoteRepo    *repository.QuoteRepository
	leadRepo     *repository.LeadRepository
	followUpRepo *repository.FollowUpRepository
	numberSeq    *NumberSequenceService
	notifier     *notify.Queue
	logger       *zap.Logger
	db           *gorm.DB
}

func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	leadRepo *repository.LeadRepository,
	followUpRepo *repository.FollowUpRepository,
	numberSeq *NumberSequenceService,
	notifier *notify.Queue,
	logger *zap.Logger,
	db *gorm.DB,
) *QuoteService {
	return &QuoteService{
		quoteRepo:    quoteRepo,
		leadRepo:     leadRepo,
		followUpRepo: followUpRepo,
		numberSeq:    numberSeq,
		notifier:     notifier,
		logger:       logger,
		db:           db,
	}
}

// buildItem validates and prices one configured item. The panel count
// must be one of the admissible options for the requested width; when the
// request omits it, the smallest admissible count is used.
func buildItem(req *domain.CreateQuoteItemRequest) (domain.QuoteItem, error) {
	kind := catalog.ProductKind(req.ProductKind)
	product, err := catalog.Lookup(kind)
	if err != nil {
		return domain.QuoteItem{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	limits := product.Limits()

	options := catalog.PanelCountOptions(req.WidthIn, limits.FrameOffset, limits.MinPanelWidth, limits.MaxPanelWidth)
	if len(options) == 0 {
		return domain.QuoteItem{}, fmt.Errorf("%w: width %.1f cannot be configured for %s", ErrInvalidInput, req.WidthIn, kind)
	}

	panelCount := req.PanelCount
	if panelCount == 0 {
		panelCount = options[0]
	} else {
		valid := false
		for _, n := range options {
			if n == panelCount {
				valid = true
				break
			}
		}
		if !valid {
			return domain.QuoteItem{}, fmt.Errorf("%w: panel count %d not admissible for width %.1f", ErrInvalidInput, panelCount, req.WidthIn)
		}
	}

	layout := req.PanelLayout
	if layout != "" {
		found := false
		for _, l := range product.Layouts(panelCount) {
			if l.Code == layout {
				found = true
				break
			}
		}
		if !found {
			return domain.QuoteItem{}, fmt.Errorf("%w: layout %s not valid for %d-panel %s", ErrInvalidInput, layout, panelCount, kind)
		}
	}

	systemType := req.SystemType
	if systemType == "" {
		systemType = domain.SystemTypeStandard
	}

	total, err := catalog.PriceItem(catalog.ItemSpec{
		Kind:       kind,
		SystemType: systemType,
		WidthIn:    req.WidthIn,
		HeightIn:   req.HeightIn,
		PanelCount: panelCount,
		GlassType:  req.GlassType,
	})
	if err != nil {
		return domain.QuoteItem{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	item := domain.QuoteItem{
		ProductKind:    req.ProductKind,
		SystemType:     systemType,
		WidthIn:        req.WidthIn,
		HeightIn:       req.HeightIn,
		PanelCount:     panelCount,
		PanelLayout:    layout,
		GlassType:      req.GlassType,
		ExteriorFinish: req.ExteriorFinish,
		HardwareFinish: req.HardwareFinish,
		BasePrice:      product.BasePrice(),
		ItemTotal:      total,
	}
	item.Description = describeItem(&item)
	return item, nil
}

// describeItem regenerates the human-readable line item description from
// its current configuration fields.
func describeItem(item *domain.QuoteItem) string {
	parts := []string{
		fmt.Sprintf("%s door", strings.ReplaceAll(item.ProductKind, "_", " ")),
		fmt.Sprintf("%s system", item.SystemType),
		fmt.Sprintf("%.0f\" x %.0f\"", item.WidthIn, item.HeightIn),
		fmt.Sprintf("%d panels", item.PanelCount),
	}
	if item.PanelLayout != "" {
		parts[3] = fmt.Sprintf("%d panels (%s)", item.PanelCount, item.PanelLayout)
	}
	if item.GlassType != "" {
		parts = append(parts, fmt.Sprintf("%s glass", item.GlassType))
	}
	if item.ExteriorFinish != "" {
		parts = append(parts, fmt.Sprintf("%s exterior", item.ExteriorFinish))
	}
	if item.HardwareFinish != "" {
		parts = append(parts, fmt.Sprintf("%s hardware", item.HardwareFinish))
	}
	return strings.Join(parts, ", ")
}

// applyTotals recomputes the derived money fields from the full item
// list. Totals are never adjusted incrementally.
func applyTotals(quote *domain.Quote) {
	itemTotals := make([]float64, len(quote.Items))
	for i := range quote.Items {
		itemTotals[i] = quote.Items[i].ItemTotal
	}
	if quote.IncludeInstallation {
		quote.InstallationCost = catalog.Round2(catalog.InstallationRatePerItem * float64(len(quote.Items)))
	} else {
		quote.InstallationCost = 0
	}
	totals := catalog.ComputeTotals(itemTotals, quote.InstallationCost, quote.DeliveryCost)
	quote.Subtotal = totals.Subtotal
	quote.Tax = totals.Tax
	quote.GrandTotal = totals.GrandTotal
}

// Create assembles configured items into a draft quote
func (s *QuoteService) Create(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	items := make([]domain.QuoteItem, 0, len(req.Items))
	for i := range req.Items {
		item, err := buildItem(&req.Items[i])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	quote := &domain.Quote{
		ClientName:          req.ClientName,
		ClientEmail:         req.ClientEmail,
		ClientPhone:         req.ClientPhone,
		SiteAddress:         req.SiteAddress,
		Status:              domain.QuoteStatusDraft,
		Items:               items,
		IncludeInstallation: req.IncludeInstallation,
		DeliveryCost:        req.DeliveryCost,
	}
	applyTotals(quote)

	// A lead reference that does not resolve is dropped, not fatal
	if req.LeadID != nil {
		if _, err := s.leadRepo.GetByID(ctx, *req.LeadID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to verify lead: %w", err)
			}
			s.logger.Warn("lead not found, creating quote without lead reference",
				zap.String("leadID", req.LeadID.String()))
		} else {
			quote.LeadID = req.LeadID
		}
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	// First item is the primary until a caller says otherwise
	quote.PrimaryItemID = &quote.Items[0].ID
	if err := s.quoteRepo.UpdateFields(ctx, quote.ID, map[string]interface{}{
		"primary_item_id": quote.PrimaryItemID,
	}); err != nil {
		return nil, fmt.Errorf("failed to set primary item: %w", err)
	}

	if quote.LeadID != nil {
		if err := s.leadRepo.UpdateStatus(ctx, *quote.LeadID, domain.LeadStatusQuoted); err != nil {
			s.logger.Warn("failed to advance lead status", zap.Error(err))
		}
	}

	s.logger.Info("quote created",
		zap.String("quoteID", quote.ID.String()),
		zap.Int("items", len(quote.Items)),
		zap.Float64("grandTotal", quote.GrandTotal))

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// GetByID returns a quote with its items
func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// List returns a page of quotes, optionally filtered by status
func (s *QuoteService) List(ctx context.Context, page, pageSize int, status *domain.QuoteStatus) ([]domain.QuoteDTO, int64, error) {
	quotes, total, err := s.quoteRepo.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quotes: %w", err)
	}
	dtos := make([]domain.QuoteDTO, 0, len(quotes))
	for i := range quotes {
		dtos = append(dtos, mapper.ToQuoteDTO(&quotes[i]))
	}
	return dtos, total, nil
}

// Send transitions draft → sent, assigning the quote number and SentAt
func (s *QuoteService) Send(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status != domain.QuoteStatusDraft {
		return nil, fmt.Errorf("%w: cannot send quote in status %s", ErrInvalidTransition, quote.Status)
	}

	if quote.QuoteNumber == "" {
		number, err := s.numberSeq.GenerateQuoteNumber(ctx)
		if err != nil {
			return nil, err
		}
		quote.QuoteNumber = number
	}

	now := time.Now().UTC()
	quote.Status = domain.QuoteStatusSent
	quote.PortalStage = domain.PortalStageQuoteSent
	quote.SentAt = &now

	if err := s.quoteRepo.UpdateFields(ctx, quote.ID, map[string]interface{}{
		"status":       quote.Status,
		"portal_stage": quote.PortalStage,
		"quote_number": quote.QuoteNumber,
		"sent_at":      quote.SentAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to send quote: %w", err)
	}

	s.notifier.Enqueue(notify.Message{
		Event:   notify.EventQuoteSent,
		Subject: fmt.Sprintf("Quote %s sent", quote.QuoteNumber),
		Body:    fmt.Sprintf("Quote %s for %s ($%.2f) was sent to %s", quote.QuoteNumber, quote.ClientName, quote.GrandTotal, quote.ClientEmail),
		Meta:    map[string]string{"quoteId": quote.ID.String()},
	})

	s.logger.Info("quote sent",
		zap.String("quoteID", quote.ID.String()),
		zap.String("quoteNumber", quote.QuoteNumber))

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// MarkViewed records the client opening a sent quote. Viewing is
// idempotent; re-viewing past "sent" changes nothing.
func (s *QuoteService) MarkViewed(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status == domain.QuoteStatusSent {
		now := time.Now().UTC()
		quote.Status = domain.QuoteStatusViewed
		quote.ViewedAt = &now
		if err := s.quoteRepo.UpdateFields(ctx, quote.ID, map[string]interface{}{
			"status":    quote.Status,
			"viewed_at": quote.ViewedAt,
		}); err != nil {
			return nil, fmt.Errorf("failed to mark quote viewed: %w", err)
		}

		s.notifier.Enqueue(notify.Message{
			Event:   notify.EventQuoteViewed,
			Subject: fmt.Sprintf("Quote %s viewed", quote.QuoteNumber),
			Body:    fmt.Sprintf("%s opened quote %s", quote.ClientName, quote.QuoteNumber),
			Meta:    map[string]string{"quoteId": quote.ID.String()},
		})
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// ClientAccept moves a sent or viewed quote to pending_approval. Quotes
// are never auto-accepted; internal confirmation follows separately.
func (s *QuoteService) ClientAccept(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	switch quote.Status {
	case domain.QuoteStatusSent, domain.QuoteStatusViewed:
		quote.Status = domain.QuoteStatusPendingApproval
		quote.PortalStage = domain.PortalStageApprovalPending
		if err := s.quoteRepo.UpdateFields(ctx, quote.ID, map[string]interface{}{
			"status":       quote.Status,
			"portal_stage": quote.PortalStage,
		}); err != nil {
			return nil, fmt.Errorf("failed to accept quote: %w", err)
		}
	case domain.QuoteStatusPendingApproval:
		// already awaiting confirmation
	default:
		return nil, fmt.Errorf("%w: cannot accept quote in status %s", ErrInvalidTransition, quote.Status)
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// ConfirmAcceptance is the internal confirmation step that finalizes
// acceptance, pending_approval → accepted.
func (s *QuoteService) ConfirmAcceptance(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status != domain.QuoteStatusPendingApproval {
		return nil, fmt.Errorf("%w: cannot confirm acceptance from status %s", ErrInvalidTransition, quote.Status)
	}

	quote.Status = domain.QuoteStatusAccepted
	quote.PortalStage = domain.PortalStageDrawingRequested
	if err := s.quoteRepo.UpdateFields(ctx, quote.ID, map[string]interface{}{
		"status":       quote.Status,
		"portal_stage": quote.PortalStage,
	}); err != nil {
		return nil, fmt.Errorf("failed to confirm acceptance: %w", err)
	}

	s.notifier.Enqueue(notify.Message{
		Event:   notify.EventQuoteAccepted,
		Subject: fmt.Sprintf("Quote %s accepted", quote.QuoteNumber),
		Body:    fmt.Sprintf("Quote %s for %s was accepted at $%.2f", quote.QuoteNumber, quote.ClientName, quote.GrandTotal),
		Meta:    map[string]string{"quoteId": quote.ID.String()},
	})

	s.logger.Info("quote accepted",
		zap.String("quoteID", quote.ID.String()),
		zap.String("quoteNumber", quote.QuoteNumber))

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Decline moves a sent, viewed or pending_approval quote to declined and
// cancels any pending follow-up reminders. Re-declining is a no-op.
func (s *QuoteService) Decline(ctx context.Context, id uuid.UUID, reason string) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	switch quote.Status {
	case domain.QuoteStatusSent, domain.QuoteStatusViewed, domain.QuoteStatusPendingApproval:
		quote.Status = domain.QuoteStatusDeclined
		if err := s.quoteRepo.UpdateFields(ctx, quote.ID, map[string]interface{}{
			"status": quote.Status,
		}); err != nil {
			return nil, fmt.Errorf("failed to decline quote: %w", err)
		}

		cancelled, err := s.followUpRepo.CancelPending(ctx, quote.ID)
		if err != nil {
			s.logger.Warn("failed to cancel follow-ups for declined quote",
				zap.String("quoteID", quote.ID.String()),
				zap.Error(err))
		} else if cancelled > 0 {
			s.logger.Info("cancelled pending follow-ups",
				zap.String("quoteID", quote.ID.String()),
				zap.Int64("count", cancelled))
		}

		if quote.LeadID != nil {
			if err := s.leadRepo.UpdateStatus(ctx, *quote.LeadID, domain.LeadStatusLost); err != nil {
				s.logger.Warn("failed to mark lead lost", zap.Error(err))
			}
		}

		s.notifier.Enqueue(notify.Message{
			Event:   notify.EventQuoteDeclined,
			Subject: fmt.Sprintf("Quote %s declined", quote.QuoteNumber),
			Body:    fmt.Sprintf("Quote %s for %s was declined. Reason: %s", quote.QuoteNumber, quote.ClientName, reason),
			Meta:    map[string]string{"quoteId": quote.ID.String()},
		})
	case domain.QuoteStatusDeclined:
		// already declined
	default:
		return nil, fmt.Errorf("%w: cannot decline quote in status %s", ErrInvalidTransition, quote.Status)
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// UpdateStatus dispatches a requested target status to the matching
// transition. Unsupported targets are rejected.
func (s *QuoteService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) (*domain.QuoteDTO, error) {
	switch status {
	case domain.QuoteStatusSent:
		return s.Send(ctx, id)
	case domain.QuoteStatusViewed:
		return s.MarkViewed(ctx, id)
	case domain.QuoteStatusPendingApproval:
		return s.ClientAccept(ctx, id)
	case domain.QuoteStatusAccepted:
		return s.ConfirmAcceptance(ctx, id)
	case domain.QuoteStatusDeclined:
		return s.Decline(ctx, id, "")
	default:
		return nil, fmt.Errorf("%w: unsupported target status %s", ErrInvalidTransition, status)
	}
}

// UpdateItems replaces the quote's item list and recomputes totals from
// scratch. Allowed only before the acceptance flow locks the quote.
func (s *QuoteService) UpdateItems(ctx context.Context, id uuid.UUID, req *domain.UpdateQuoteItemsRequest) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	switch quote.Status {
	case domain.QuoteStatusDraft, domain.QuoteStatusSent, domain.QuoteStatusViewed:
	default:
		return nil, fmt.Errorf("%w: cannot modify items in status %s", ErrInvalidTransition, quote.Status)
	}

	items := make([]domain.QuoteItem, 0, len(req.Items))
	for i := range req.Items {
		item, err := buildItem(&req.Items[i])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if req.IncludeInstallation != nil {
		quote.IncludeInstallation = *req.IncludeInstallation
	}
	if req.DeliveryCost != nil {
		quote.DeliveryCost = *req.DeliveryCost
	}
	quote.Items = items
	applyTotals(quote)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.quoteRepo.ReplaceItems(ctx, tx, quote.ID, quote.Items); err != nil {
			return err
		}
		return tx.Model(&domain.Quote{}).Where("id = ?", quote.ID).Updates(map[string]interface{}{
			"include_installation": quote.IncludeInstallation,
			"installation_cost":    quote.InstallationCost,
			"delivery_cost":        quote.DeliveryCost,
			"subtotal":             quote.Subtotal,
			"tax":                  quote.Tax,
			"grand_total":          quote.GrandTotal,
			"primary_item_id":      quote.Items[0].ID,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update quote items: %w", err)
	}

	quote, err = s.quoteRepo.GetByID(ctx, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quote: %w", err)
	}

	s.logger.Info("quote items updated",
		zap.String("quoteID", quote.ID.String()),
		zap.Int("items", len(quote.Items)),
		zap.Float64("grandTotal", quote.GrandTotal))

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

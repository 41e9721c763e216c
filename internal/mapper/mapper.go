package mapper

import (
	"time"

	"github.com/solhaus/portal-api/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// ToQuoteDTO converts Quote to QuoteDTO
func ToQuoteDTO(quote *domain.Quote) domain.QuoteDTO {
	items := make([]domain.QuoteItemDTO, 0, len(quote.Items))
	for i := range quote.Items {
		items = append(items, ToQuoteItemDTO(&quote.Items[i]))
	}
	return domain.QuoteDTO{
		ID:                  quote.ID,
		QuoteNumber:         quote.QuoteNumber,
		LeadID:              quote.LeadID,
		ClientName:          quote.ClientName,
		ClientEmail:         quote.ClientEmail,
		ClientPhone:         quote.ClientPhone,
		SiteAddress:         quote.SiteAddress,
		Status:              quote.Status,
		PortalStage:         quote.PortalStage,
		Size:                quote.Size,
		Color:               quote.Color,
		Items:               items,
		PrimaryItemID:       quote.PrimaryItemID,
		IncludeInstallation: quote.IncludeInstallation,
		InstallationCost:    quote.InstallationCost,
		DeliveryCost:        quote.DeliveryCost,
		Subtotal:            quote.Subtotal,
		Tax:                 quote.Tax,
		GrandTotal:          quote.GrandTotal,
		SentAt:              formatTimePtr(quote.SentAt),
		ViewedAt:            formatTimePtr(quote.ViewedAt),
		CreatedAt:           quote.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:           quote.UpdatedAt.UTC().Format(timeLayout),
	}
}

// ToQuoteItemDTO converts QuoteItem to QuoteItemDTO
func ToQuoteItemDTO(item *domain.QuoteItem) domain.QuoteItemDTO {
	return domain.QuoteItemDTO{
		ID:             item.ID,
		ProductKind:    item.ProductKind,
		SystemType:     item.SystemType,
		WidthIn:        item.WidthIn,
		HeightIn:       item.HeightIn,
		PanelCount:     item.PanelCount,
		PanelLayout:    item.PanelLayout,
		GlassType:      item.GlassType,
		ExteriorFinish: item.ExteriorFinish,
		HardwareFinish: item.HardwareFinish,
		Description:    item.Description,
		BasePrice:      item.BasePrice,
		ItemTotal:      item.ItemTotal,
	}
}

// ToApprovalDrawingDTO converts ApprovalDrawing to ApprovalDrawingDTO
func ToApprovalDrawingDTO(drawing *domain.ApprovalDrawing) domain.ApprovalDrawingDTO {
	return domain.ApprovalDrawingDTO{
		ID:            drawing.ID,
		QuoteID:       drawing.QuoteID,
		Status:        drawing.Status,
		OverallWidth:  drawing.OverallWidth,
		OverallHeight: drawing.OverallHeight,
		PanelCount:    drawing.PanelCount,
		SlideDir:      drawing.SlideDir,
		InSwing:       drawing.InSwing,
		FrameColor:    drawing.FrameColor,
		HardwareColor: drawing.HardwareColor,
		CustomerName:  drawing.CustomerName,
		SignedAt:      formatTimePtr(drawing.SignedAt),
		CreatedAt:     drawing.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:     drawing.UpdatedAt.UTC().Format(timeLayout),
	}
}

// ToContractDTO converts Contract to ContractDTO
func ToContractDTO(contract *domain.Contract) domain.ContractDTO {
	return domain.ContractDTO{
		ID:         contract.ID,
		QuoteID:    contract.QuoteID,
		SignerName: contract.SignerName,
		SignedAt:   contract.SignedAt.UTC().Format(timeLayout),
		CreatedAt:  contract.CreatedAt.UTC().Format(timeLayout),
	}
}

// ToPaymentDTO converts Payment to PaymentDTO
func ToPaymentDTO(payment *domain.Payment) domain.PaymentDTO {
	return domain.PaymentDTO{
		ID:          payment.ID,
		QuoteID:     payment.QuoteID,
		ContractID:  payment.ContractID,
		ClientName:  payment.ClientName,
		Amount:      payment.Amount,
		PaymentType: payment.PaymentType,
		Status:      payment.Status,
		CreatedAt:   payment.CreatedAt.UTC().Format(timeLayout),
	}
}

// ToOrderDTO converts Order to OrderDTO
func ToOrderDTO(order *domain.Order) domain.OrderDTO {
	return domain.OrderDTO{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		QuoteID:     order.QuoteID,
		ContractID:  order.ContractID,
		PaymentID:   order.PaymentID,
		ClientName:  order.ClientName,
		ClientEmail: order.ClientEmail,
		CreatedAt:   order.CreatedAt.UTC().Format(timeLayout),
	}
}

// ToOrderTrackingDTO converts OrderTracking to OrderTrackingDTO
func ToOrderTrackingDTO(tracking *domain.OrderTracking) domain.OrderTrackingDTO {
	return domain.OrderTrackingDTO{
		ID:             tracking.ID,
		QuoteID:        tracking.QuoteID,
		OrderID:        tracking.OrderID,
		Stage:          tracking.Stage,
		Deposit1Amount: tracking.Deposit1Amount,
		Deposit2Amount: tracking.Deposit2Amount,
		CreatedAt:      tracking.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:      tracking.UpdatedAt.UTC().Format(timeLayout),
	}
}

// ToFollowUpEntryDTO converts FollowUpEntry to FollowUpEntryDTO
func ToFollowUpEntryDTO(entry *domain.FollowUpEntry) domain.FollowUpEntryDTO {
	return domain.FollowUpEntryDTO{
		ID:             entry.ID,
		QuoteID:        entry.QuoteID,
		LeadID:         entry.LeadID,
		SequenceNumber: entry.SequenceNumber,
		ScheduledFor:   entry.ScheduledFor.UTC().Format(timeLayout),
		Status:         entry.Status,
	}
}

// ToLeadDTO converts Lead to LeadDTO
func ToLeadDTO(lead *domain.Lead) domain.LeadDTO {
	return domain.LeadDTO{
		ID:        lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Source:    lead.Source,
		Message:   lead.Message,
		Status:    lead.Status,
		CreatedAt: lead.CreatedAt.UTC().Format(timeLayout),
	}
}

package domain

import (
	"github.com/google/uuid"
)

// QuoteDTO is the API shape of a quote
type QuoteDTO struct {
	ID                  uuid.UUID      `json:"id"`
	QuoteNumber         string         `json:"quoteNumber,omitempty"`
	LeadID              *uuid.UUID     `json:"leadId,omitempty"`
	ClientName          string         `json:"clientName"`
	ClientEmail         string         `json:"clientEmail"`
	ClientPhone         string         `json:"clientPhone,omitempty"`
	SiteAddress         string         `json:"siteAddress,omitempty"`
	Status              QuoteStatus    `json:"status"`
	PortalStage         PortalStage    `json:"portalStage,omitempty"`
	Size                string         `json:"size,omitempty"`
	Color               string         `json:"color,omitempty"`
	Items               []QuoteItemDTO `json:"items"`
	PrimaryItemID       *uuid.UUID     `json:"primaryItemId,omitempty"`
	IncludeInstallation bool           `json:"includeInstallation"`
	InstallationCost    float64        `json:"installationCost"`
	DeliveryCost        float64        `json:"deliveryCost"`
	Subtotal            float64        `json:"subtotal"`
	Tax                 float64        `json:"tax"`
	GrandTotal          float64        `json:"grandTotal"`
	SentAt              string         `json:"sentAt,omitempty"`   // ISO 8601
	ViewedAt            string         `json:"viewedAt,omitempty"` // ISO 8601
	CreatedAt           string         `json:"createdAt"`
	UpdatedAt           string         `json:"updatedAt"`
}

// QuoteItemDTO is the API shape of a configured line item
type QuoteItemDTO struct {
	ID             uuid.UUID  `json:"id"`
	ProductKind    string     `json:"productKind"`
	SystemType     SystemType `json:"systemType"`
	WidthIn        float64    `json:"widthIn"`
	HeightIn       float64    `json:"heightIn"`
	PanelCount     int        `json:"panelCount"`
	PanelLayout    string     `json:"panelLayout,omitempty"`
	GlassType      string     `json:"glassType,omitempty"`
	ExteriorFinish string     `json:"exteriorFinish,omitempty"`
	HardwareFinish string     `json:"hardwareFinish,omitempty"`
	Description    string     `json:"description,omitempty"`
	BasePrice      float64    `json:"basePrice"`
	ItemTotal      float64    `json:"itemTotal"`
}

// ApprovalDrawingDTO is the API shape of an approval drawing
type ApprovalDrawingDTO struct {
	ID            uuid.UUID      `json:"id"`
	QuoteID       uuid.UUID      `json:"quoteId"`
	Status        DrawingStatus  `json:"status"`
	OverallWidth  float64        `json:"overallWidth"`
	OverallHeight float64        `json:"overallHeight"`
	PanelCount    int            `json:"panelCount"`
	SlideDir      SlideDirection `json:"slideDirection"`
	InSwing       InSwing        `json:"inSwing"`
	FrameColor    string         `json:"frameColor,omitempty"`
	HardwareColor string         `json:"hardwareColor,omitempty"`
	CustomerName  string         `json:"customerName,omitempty"`
	SignedAt      string         `json:"signedAt,omitempty"` // ISO 8601
	CreatedAt     string         `json:"createdAt"`
	UpdatedAt     string         `json:"updatedAt"`
}

// ContractDTO is the API shape of a signed contract
type ContractDTO struct {
	ID         uuid.UUID `json:"id"`
	QuoteID    uuid.UUID `json:"quoteId"`
	SignerName string    `json:"signerName"`
	SignedAt   string    `json:"signedAt"` // ISO 8601
	CreatedAt  string    `json:"createdAt"`
}

// PaymentDTO is the API shape of a payment
type PaymentDTO struct {
	ID          uuid.UUID     `json:"id"`
	QuoteID     uuid.UUID     `json:"quoteId"`
	ContractID  *uuid.UUID    `json:"contractId,omitempty"`
	ClientName  string        `json:"clientName,omitempty"`
	Amount      float64       `json:"amount"`
	PaymentType PaymentType   `json:"paymentType"`
	Status      PaymentStatus `json:"status"`
	CreatedAt   string        `json:"createdAt"`
}

// OrderDTO is the API shape of an order
type OrderDTO struct {
	ID          uuid.UUID  `json:"id"`
	OrderNumber string     `json:"orderNumber,omitempty"`
	QuoteID     uuid.UUID  `json:"quoteId"`
	ContractID  *uuid.UUID `json:"contractId,omitempty"`
	PaymentID   *uuid.UUID `json:"paymentId,omitempty"`
	ClientName  string     `json:"clientName"`
	ClientEmail string     `json:"clientEmail,omitempty"`
	CreatedAt   string     `json:"createdAt"`
}

// OrderTrackingDTO is the API shape of order tracking
type OrderTrackingDTO struct {
	ID             uuid.UUID     `json:"id"`
	QuoteID        uuid.UUID     `json:"quoteId"`
	OrderID        *uuid.UUID    `json:"orderId,omitempty"`
	Stage          TrackingStage `json:"stage"`
	Deposit1Amount float64       `json:"deposit1Amount"`
	Deposit2Amount float64       `json:"deposit2Amount"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
}

// FollowUpEntryDTO is the API shape of a follow-up reminder
type FollowUpEntryDTO struct {
	ID             uuid.UUID      `json:"id"`
	QuoteID        uuid.UUID      `json:"quoteId"`
	LeadID         *uuid.UUID     `json:"leadId,omitempty"`
	SequenceNumber int            `json:"sequenceNumber"`
	ScheduledFor   string         `json:"scheduledFor"` // ISO 8601
	Status         FollowUpStatus `json:"status"`
}

// LeadDTO is the API shape of a lead
type LeadDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Source    string     `json:"source,omitempty"`
	Message   string     `json:"message,omitempty"`
	Status    LeadStatus `json:"status"`
	CreatedAt string     `json:"createdAt"`
}

// PanelOptionsDTO is the configuration surface returned to the UI
type PanelOptionsDTO struct {
	ProductKind string            `json:"productKind"`
	PanelCounts []int             `json:"panelCounts"`
	Layouts     map[string]string `json:"layouts,omitempty"`
	MaxWidth    float64           `json:"maxWidth"`
	MaxHeight   float64           `json:"maxHeight"`
}

// Pagination response wrapper
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// --- Requests ---

type CreateQuoteItemRequest struct {
	ProductKind    string     `json:"productKind" validate:"required,max=50"`
	SystemType     SystemType `json:"systemType,omitempty" validate:"omitempty,oneof=standard pocket"`
	WidthIn        float64    `json:"widthIn" validate:"required,gt=0"`
	HeightIn       float64    `json:"heightIn" validate:"required,gt=0"`
	PanelCount     int        `json:"panelCount,omitempty" validate:"omitempty,gte=2,lte=10"`
	PanelLayout    string     `json:"panelLayout,omitempty" validate:"max=50"`
	GlassType      string     `json:"glassType,omitempty" validate:"max=50"`
	ExteriorFinish string     `json:"exteriorFinish,omitempty" validate:"max=100"`
	HardwareFinish string     `json:"hardwareFinish,omitempty" validate:"max=100"`
}

type CreateQuoteRequest struct {
	LeadID              *uuid.UUID               `json:"leadId,omitempty"`
	ClientName          string                   `json:"clientName" validate:"required,max=200"`
	ClientEmail         string                   `json:"clientEmail" validate:"required,email"`
	ClientPhone         string                   `json:"clientPhone,omitempty" validate:"max=50"`
	SiteAddress         string                   `json:"siteAddress,omitempty" validate:"max=500"`
	Items               []CreateQuoteItemRequest `json:"items" validate:"required,min=1,dive"`
	IncludeInstallation bool                     `json:"includeInstallation,omitempty"`
	DeliveryCost        float64                  `json:"deliveryCost,omitempty" validate:"gte=0"`
}

type UpdateQuoteItemsRequest struct {
	Items               []CreateQuoteItemRequest `json:"items" validate:"required,min=1,dive"`
	IncludeInstallation *bool                    `json:"includeInstallation,omitempty"`
	DeliveryCost        *float64                 `json:"deliveryCost,omitempty" validate:"omitempty,gte=0"`
}

type UpdateQuoteStatusRequest struct {
	Status QuoteStatus `json:"status" validate:"required"`
}

type UpdateLeadStatusRequest struct {
	Status LeadStatus `json:"status" validate:"required,oneof=new contacted quoted order lost"`
}

type DeclineQuoteRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type SignContractRequest struct {
	SignerName     string `json:"signerName" validate:"required,max=200"`
	SignatureImage string `json:"signatureImage" validate:"required"` // base64 PNG
}

type UpdateDrawingRequest struct {
	OverallWidth  *float64        `json:"overallWidth,omitempty" validate:"omitempty,gt=0"`
	OverallHeight *float64        `json:"overallHeight,omitempty" validate:"omitempty,gt=0"`
	PanelCount    *int            `json:"panelCount,omitempty" validate:"omitempty,gte=2,lte=10"`
	SlideDir      *SlideDirection `json:"slideDirection,omitempty"`
	InSwing       *InSwing        `json:"inSwing,omitempty" validate:"omitempty,oneof=interior exterior"`
	FrameColor    *string         `json:"frameColor,omitempty" validate:"omitempty,max=100"`
	HardwareColor *string         `json:"hardwareColor,omitempty" validate:"omitempty,max=100"`
}

type SignDrawingRequest struct {
	CustomerName   string `json:"customerName" validate:"required,max=200"`
	SignatureImage string `json:"signatureImage" validate:"required"` // base64 PNG
}

type ScheduleFollowUpsRequest struct {
	LeadID       *uuid.UUID `json:"leadId,omitempty"`
	IntervalDays int        `json:"intervalDays,omitempty" validate:"omitempty,gte=1,lte=90"`
	Count        int        `json:"count,omitempty" validate:"omitempty,gte=1,lte=12"`
}

type CreateLeadRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"max=50"`
	Source  string `json:"source,omitempty" validate:"max=100"`
	Message string `json:"message,omitempty" validate:"max=2000"`
}

// SignContractResponse bundles the records created by contract signature
type SignContractResponse struct {
	Contract *ContractDTO `json:"contract"`
	Payment  *PaymentDTO  `json:"payment"`
	Order    *OrderDTO    `json:"order"`
}

// SignDrawingResponse bundles the records created by drawing signature
type SignDrawingResponse struct {
	Drawing  *ApprovalDrawingDTO `json:"drawing"`
	Order    *OrderDTO           `json:"order,omitempty"`
	Tracking *OrderTrackingDTO   `json:"tracking,omitempty"`
}

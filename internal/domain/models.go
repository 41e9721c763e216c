package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the primary key so records work the same on
// postgres and the sqlite test driver.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// LeadStatus represents how far a sales lead has progressed
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQuoted    LeadStatus = "quoted"
	LeadStatusOrder     LeadStatus = "order"
	LeadStatusLost      LeadStatus = "lost"
)

// Lead represents an incoming sales inquiry
type Lead struct {
	BaseModel
	Name    string     `gorm:"type:varchar(200);not null;index"`
	Email   string     `gorm:"type:varchar(255);not null"`
	Phone   string     `gorm:"type:varchar(50)"`
	Source  string     `gorm:"type:varchar(100)"`
	Message string     `gorm:"type:text"`
	Status  LeadStatus `gorm:"type:varchar(50);not null;default:'new';index"`
}

// QuoteStatus represents the acceptance state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft           QuoteStatus = "draft"
	QuoteStatusSent            QuoteStatus = "sent"
	QuoteStatusViewed          QuoteStatus = "viewed"
	QuoteStatusPendingApproval QuoteStatus = "pending_approval"
	QuoteStatusAccepted        QuoteStatus = "accepted"
	QuoteStatusDeclined        QuoteStatus = "declined"
)

// IsValid checks if the QuoteStatus is a valid enum value
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusViewed,
		QuoteStatusPendingApproval, QuoteStatusAccepted, QuoteStatusDeclined:
		return true
	}
	return false
}

// PortalStage is the finer-grained progress marker shown to the client.
// It is correlated with, but independent of, QuoteStatus.
type PortalStage string

const (
	PortalStageQuoteSent        PortalStage = "quote_sent"
	PortalStageDrawingRequested PortalStage = "drawing_requested"
	PortalStageApprovalPending  PortalStage = "approval_pending"
	PortalStageDeposit1Pending  PortalStage = "deposit_1_pending"
	PortalStageInProduction     PortalStage = "in_production"
	PortalStageDeposit2Pending  PortalStage = "deposit_2_pending"
	PortalStageComplete         PortalStage = "complete"
)

// Quote represents a priced proposal for one or more configured door items
type Quote struct {
	BaseModel
	QuoteNumber   string      `gorm:"type:varchar(50);unique;index;column:quote_number"`
	LeadID        *uuid.UUID  `gorm:"type:uuid;index;column:lead_id"`
	ClientName    string      `gorm:"type:varchar(200);not null;column:client_name"`
	ClientEmail   string      `gorm:"type:varchar(255);not null;column:client_email"`
	ClientPhone   string      `gorm:"type:varchar(50);column:client_phone"`
	SiteAddress   string      `gorm:"type:varchar(500);column:site_address"`
	Status        QuoteStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	PortalStage   PortalStage `gorm:"type:varchar(50);column:portal_stage"`
	Size          string      `gorm:"type:varchar(100)"`
	Color         string      `gorm:"type:varchar(100)"`
	Items         []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	PrimaryItemID *uuid.UUID  `gorm:"type:uuid;column:primary_item_id"`

	IncludeInstallation bool    `gorm:"not null;default:false;column:include_installation"`
	InstallationCost    float64 `gorm:"type:decimal(15,2);not null;default:0;column:installation_cost"`
	DeliveryCost        float64 `gorm:"type:decimal(15,2);not null;default:0;column:delivery_cost"`
	Subtotal            float64 `gorm:"type:decimal(15,2);not null;default:0"`
	Tax                 float64 `gorm:"type:decimal(15,2);not null;default:0"`
	GrandTotal          float64 `gorm:"type:decimal(15,2);not null;default:0;column:grand_total"`

	SentAt   *time.Time `gorm:"column:sent_at"`
	ViewedAt *time.Time `gorm:"column:viewed_at"`
}

// PrimaryItem returns the line item that drawing edits mirror into.
// Falls back to the first item when no explicit primary is set.
func (q *Quote) PrimaryItem() *QuoteItem {
	if q.PrimaryItemID != nil {
		for i := range q.Items {
			if q.Items[i].ID == *q.PrimaryItemID {
				return &q.Items[i]
			}
		}
	}
	if len(q.Items) > 0 {
		return &q.Items[0]
	}
	return nil
}

// SystemType represents the door frame system
type SystemType string

const (
	SystemTypeStandard SystemType = "standard"
	SystemTypePocket   SystemType = "pocket"
)

// QuoteItem represents a configured door in a quote
type QuoteItem struct {
	BaseModel
	QuoteID        uuid.UUID  `gorm:"type:uuid;not null;index;column:quote_id"`
	ProductKind    string     `gorm:"type:varchar(50);not null;column:product_kind"`
	SystemType     SystemType `gorm:"type:varchar(50);not null;default:'standard';column:system_type"`
	WidthIn        float64    `gorm:"type:decimal(8,2);not null;column:width_in"`
	HeightIn       float64    `gorm:"type:decimal(8,2);not null;column:height_in"`
	PanelCount     int        `gorm:"not null;default:0;column:panel_count"`
	PanelLayout    string     `gorm:"type:varchar(50);column:panel_layout"`
	GlassType      string     `gorm:"type:varchar(50);column:glass_type"`
	ExteriorFinish string     `gorm:"type:varchar(100);column:exterior_finish"`
	HardwareFinish string     `gorm:"type:varchar(100);column:hardware_finish"`
	Description    string     `gorm:"type:text"`
	BasePrice      float64    `gorm:"type:decimal(15,2);not null;default:0;column:base_price"`
	ItemTotal      float64    `gorm:"type:decimal(15,2);not null;default:0;column:item_total"`
}

// DrawingStatus represents the lifecycle of an approval drawing
type DrawingStatus string

const (
	DrawingStatusDraft  DrawingStatus = "draft"
	DrawingStatusSent   DrawingStatus = "sent"
	DrawingStatusSigned DrawingStatus = "signed"
)

// SlideDirection represents the operating direction of the panels
type SlideDirection string

const (
	SlideDirectionLeft   SlideDirection = "left"
	SlideDirectionRight  SlideDirection = "right"
	SlideDirectionBiPart SlideDirection = "bi-part"
)

// IsValid checks if the SlideDirection is a valid enum value
func (d SlideDirection) IsValid() bool {
	switch d {
	case SlideDirectionLeft, SlideDirectionRight, SlideDirectionBiPart:
		return true
	}
	return false
}

// InSwing represents which side the panels swing or stack toward
type InSwing string

const (
	InSwingInterior InSwing = "interior"
	InSwingExterior InSwing = "exterior"
)

// ApprovalDrawing is the dimensional specification a customer signs
// before fabrication. The latest drawing per quote is the active one.
type ApprovalDrawing struct {
	BaseModel
	QuoteID       uuid.UUID      `gorm:"type:uuid;not null;index;column:quote_id"`
	Status        DrawingStatus  `gorm:"type:varchar(50);not null;default:'draft';index"`
	OverallWidth  float64        `gorm:"type:decimal(8,2);not null;column:overall_width"`
	OverallHeight float64        `gorm:"type:decimal(8,2);not null;column:overall_height"`
	PanelCount    int            `gorm:"not null;column:panel_count"`
	SlideDir      SlideDirection `gorm:"type:varchar(20);not null;default:'left';column:slide_direction"`
	InSwing       InSwing        `gorm:"type:varchar(20);not null;default:'exterior';column:in_swing"`
	FrameColor    string         `gorm:"type:varchar(100);column:frame_color"`
	HardwareColor string         `gorm:"type:varchar(100);column:hardware_color"`

	CustomerName  string     `gorm:"type:varchar(200);column:customer_name"`
	SignaturePath string     `gorm:"type:varchar(500);column:signature_path"`
	SignedAt      *time.Time `gorm:"column:signed_at"`
}

// Contract is created once per quote on signature and never updated
type Contract struct {
	BaseModel
	QuoteID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:quote_id"`
	SignerName    string    `gorm:"type:varchar(200);not null;column:signer_name"`
	SignaturePath string    `gorm:"type:varchar(500);column:signature_path"`
	IPAddress     string    `gorm:"type:varchar(64);column:ip_address"`
	UserAgent     string    `gorm:"type:text;column:user_agent"`
	SignedAt      time.Time `gorm:"not null;column:signed_at"`
}

// PaymentType represents which half of the grand total a payment covers
type PaymentType string

const (
	PaymentTypeAdvance PaymentType = "advance_50"
	PaymentTypeBalance PaymentType = "balance_50"
)

// PaymentStatus represents the processing state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusOnHold    PaymentStatus = "on_hold"
)

// Payment represents one half of a quote's grand total. Status is
// mutated by the external payment processor and read back by the
// settlement sync.
type Payment struct {
	BaseModel
	QuoteID     uuid.UUID     `gorm:"type:uuid;not null;index;column:quote_id"`
	ContractID  *uuid.UUID    `gorm:"type:uuid;column:contract_id"`
	ClientName  string        `gorm:"type:varchar(200);column:client_name"`
	Amount      float64       `gorm:"type:decimal(15,2);not null"`
	PaymentType PaymentType   `gorm:"type:varchar(50);not null;column:payment_type"`
	Status      PaymentStatus `gorm:"type:varchar(50);not null;default:'pending';index"`
	ExternalRef string        `gorm:"type:varchar(100);index;column:external_ref"`
}

// Order is created exactly once per quote, by whichever signature path
// the quote is on. Client fields are a denormalized snapshot.
type Order struct {
	BaseModel
	OrderNumber string     `gorm:"type:varchar(50);unique;column:order_number"`
	QuoteID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:quote_id"`
	ContractID  *uuid.UUID `gorm:"type:uuid;column:contract_id"`
	PaymentID   *uuid.UUID `gorm:"type:uuid;column:payment_id"`
	ClientName  string     `gorm:"type:varchar(200);not null;column:client_name"`
	ClientEmail string     `gorm:"type:varchar(255);column:client_email"`
}

// TrackingStage represents fulfillment progress of an order
type TrackingStage string

const (
	TrackingStageDeposit1Pending TrackingStage = "deposit_1_pending"
	TrackingStageInProduction    TrackingStage = "in_production"
	TrackingStageReadyForInstall TrackingStage = "ready_for_install"
	TrackingStageDeposit2Pending TrackingStage = "deposit_2_pending"
	TrackingStageComplete        TrackingStage = "complete"
)

// OrderTracking follows an order through fabrication and installation
type OrderTracking struct {
	BaseModel
	QuoteID        uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex;column:quote_id"`
	OrderID        *uuid.UUID    `gorm:"type:uuid;column:order_id"`
	Stage          TrackingStage `gorm:"type:varchar(50);not null;default:'deposit_1_pending'"`
	Deposit1Amount float64       `gorm:"type:decimal(15,2);not null;column:deposit_1_amount"`
	Deposit2Amount float64       `gorm:"type:decimal(15,2);not null;column:deposit_2_amount"`
}

// TableName overrides the default pluralization
func (OrderTracking) TableName() string {
	return "order_tracking"
}

// FollowUpStatus represents the delivery state of a reminder entry
type FollowUpStatus string

const (
	FollowUpStatusPending   FollowUpStatus = "pending"
	FollowUpStatusSent      FollowUpStatus = "sent"
	FollowUpStatusCancelled FollowUpStatus = "cancelled"
)

// FollowUpEntry is one reminder in a quote's follow-up batch
type FollowUpEntry struct {
	BaseModel
	QuoteID        uuid.UUID      `gorm:"type:uuid;not null;index;column:quote_id"`
	LeadID         *uuid.UUID     `gorm:"type:uuid;column:lead_id"`
	SequenceNumber int            `gorm:"not null;column:sequence_number"`
	ScheduledFor   time.Time      `gorm:"not null;index;column:scheduled_for"`
	Status         FollowUpStatus `gorm:"type:varchar(50);not null;default:'pending';index"`
	SentAt         *time.Time     `gorm:"column:sent_at"`
}

// TableName overrides the default pluralization
func (FollowUpEntry) TableName() string {
	return "follow_up_schedule"
}

// NumberSequence backs quote and order number generation.
// One row per kind/year.
type NumberSequence struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Kind      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_seq_kind_year"`
	Year      int       `gorm:"not null;uniqueIndex:idx_seq_kind_year"`
	Value     int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the primary key
func (n *NumberSequence) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

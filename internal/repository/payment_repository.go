package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByQuoteAndType returns the quote's payment of a given type, or nil
// when none exists.
func (r *PaymentRepository) GetByQuoteAndType(ctx context.Context, quoteID uuid.UUID, paymentType domain.PaymentType) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).
		Where("quote_id = ? AND payment_type = ?", quoteID, paymentType).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

// ListPending returns payments awaiting settlement, oldest first
func (r *PaymentRepository) ListPending(ctx context.Context) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.PaymentStatusPending).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Payment{}).Where("id = ?", id).
		Update("status", status).Error
}

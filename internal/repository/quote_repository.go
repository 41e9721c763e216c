package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"gorm.io/gorm"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// UpdateFields applies a partial update without touching the item list
func (r *QuoteRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&domain.Quote{}).Where("id = ?", id).Updates(updates).Error
}

// ReplaceItems deletes the quote's line items and inserts the new set
func (r *QuoteRepository) ReplaceItems(ctx context.Context, tx *gorm.DB, quoteID uuid.UUID, items []domain.QuoteItem) error {
	if err := tx.WithContext(ctx).Where("quote_id = ?", quoteID).Delete(&domain.QuoteItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].QuoteID = quoteID
	}
	if len(items) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *QuoteRepository) SaveItem(ctx context.Context, item *domain.QuoteItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *QuoteRepository) List(ctx context.Context, page, pageSize int, status *domain.QuoteStatus) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quote{}).Preload("Items")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&quotes).Error
	return quotes, total, err
}

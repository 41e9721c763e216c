package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"gorm.io/gorm"
)

type DrawingRepository struct {
	db *gorm.DB
}

func NewDrawingRepository(db *gorm.DB) *DrawingRepository {
	return &DrawingRepository{db: db}
}

func (r *DrawingRepository) Create(ctx context.Context, drawing *domain.ApprovalDrawing) error {
	return r.db.WithContext(ctx).Create(drawing).Error
}

func (r *DrawingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalDrawing, error) {
	var drawing domain.ApprovalDrawing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&drawing).Error
	if err != nil {
		return nil, err
	}
	return &drawing, nil
}

// GetActiveByQuote returns the latest drawing for a quote. Superseded
// drawings are kept for history; only the newest one is active.
func (r *DrawingRepository) GetActiveByQuote(ctx context.Context, quoteID uuid.UUID) (*domain.ApprovalDrawing, error) {
	var drawing domain.ApprovalDrawing
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("created_at DESC").
		First(&drawing).Error
	if err != nil {
		return nil, err
	}
	return &drawing, nil
}

func (r *DrawingRepository) Update(ctx context.Context, drawing *domain.ApprovalDrawing) error {
	return r.db.WithContext(ctx).Save(drawing).Error
}

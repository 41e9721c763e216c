package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"gorm.io/gorm"
)

type TrackingRepository struct {
	db *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) *TrackingRepository {
	return &TrackingRepository{db: db}
}

func (r *TrackingRepository) Create(ctx context.Context, tracking *domain.OrderTracking) error {
	return r.db.WithContext(ctx).Create(tracking).Error
}

// GetByQuote returns the quote's tracking record, or nil when none exists
func (r *TrackingRepository) GetByQuote(ctx context.Context, quoteID uuid.UUID) (*domain.OrderTracking, error) {
	var tracking domain.OrderTracking
	err := r.db.WithContext(ctx).Where("quote_id = ?", quoteID).First(&tracking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tracking, nil
}

func (r *TrackingRepository) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.TrackingStage) error {
	return r.db.WithContext(ctx).Model(&domain.OrderTracking{}).Where("id = ?", id).
		Update("stage", stage).Error
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"gorm.io/gorm"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Lead{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *LeadRepository) List(ctx context.Context, page, pageSize int) ([]domain.Lead, int64, error) {
	var leads []domain.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Lead{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&leads).Error
	return leads, total, err
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"gorm.io/gorm"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	var contract domain.Contract
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// GetByQuote returns the quote's contract, or nil when none exists.
// Contracts are unique per quote, enforced by an index on quote_id.
func (r *ContractRepository) GetByQuote(ctx context.Context, quoteID uuid.UUID) (*domain.Contract, error) {
	var contract domain.Contract
	err := r.db.WithContext(ctx).Where("quote_id = ?", quoteID).First(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

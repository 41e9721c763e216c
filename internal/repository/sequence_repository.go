package repository

import (
	"context"

	"github.com/solhaus/portal-api/internal/domain"
	"gorm.io/gorm"
)

type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// GetNextNumber atomically increments and returns the counter for the
// given kind and year, creating the row on first use.
func (r *SequenceRepository) GetNextNumber(ctx context.Context, kind string, year int) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.NumberSequence{}).
			Where("kind = ? AND year = ?", kind, year).
			Update("value", gorm.Expr("value + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			seq := domain.NumberSequence{Kind: kind, Year: year, Value: 1}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
			next = 1
			return nil
		}
		var seq domain.NumberSequence
		if err := tx.Where("kind = ? AND year = ?", kind, year).First(&seq).Error; err != nil {
			return err
		}
		next = seq.Value
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"gorm.io/gorm"
)

// ErrPendingBatchExists is returned by CreateBatch when the quote
// already has a pending follow-up batch.
var ErrPendingBatchExists = errors.New("pending follow-up batch exists")

type FollowUpRepository struct {
	db *gorm.DB
}

func NewFollowUpRepository(db *gorm.DB) *FollowUpRepository {
	return &FollowUpRepository{db: db}
}

// HasPending reports whether the quote already has at least one pending entry
func (r *FollowUpRepository) HasPending(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowUpEntry{}).
		Where("quote_id = ? AND status = ?", quoteID, domain.FollowUpStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateBatch inserts a follow-up batch inside a transaction, re-checking for
// an existing pending batch so concurrent schedulers cannot double-book a quote.
func (r *FollowUpRepository) CreateBatch(ctx context.Context, entries []domain.FollowUpEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.FollowUpEntry{}).
			Where("quote_id = ? AND status = ?", entries[0].QuoteID, domain.FollowUpStatusPending).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrPendingBatchExists
		}
		return tx.Create(&entries).Error
	})
}

func (r *FollowUpRepository) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.FollowUpEntry, error) {
	var entries []domain.FollowUpEntry
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("sequence_number ASC").
		Find(&entries).Error
	return entries, err
}

// ListDue returns pending entries whose scheduled time has passed
func (r *FollowUpRepository) ListDue(ctx context.Context, now time.Time) ([]domain.FollowUpEntry, error) {
	var entries []domain.FollowUpEntry
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", domain.FollowUpStatusPending, now).
		Order("scheduled_for ASC").
		Find(&entries).Error
	return entries, err
}

func (r *FollowUpRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.FollowUpEntry{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  domain.FollowUpStatusSent,
			"sent_at": sentAt,
		}).Error
}

// CancelPending cancels every pending entry for the quote and returns how many
// entries were affected.
func (r *FollowUpRepository) CancelPending(ctx context.Context, quoteID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.FollowUpEntry{}).
		Where("quote_id = ? AND status = ?", quoteID, domain.FollowUpStatusPending).
		Update("status", domain.FollowUpStatusCancelled)
	return result.RowsAffected, result.Error
}

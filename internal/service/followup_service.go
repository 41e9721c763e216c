package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"github.com/solhaus/portal-api/internal/mapper"
	"github.com/solhaus/portal-api/internal/notify"
	"github.com/solhaus/portal-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Follow-up batch defaults
const (
	DefaultFollowUpIntervalDays = 4
	DefaultFollowUpCount        = 3
)

// FollowUpService schedules reminder batches for quotes that have not
// been answered, and dispatches due reminders.
type FollowUpService struct {
	followUpRepo *repository.FollowUpRepository
	quoteRepo    *repository.QuoteRepository
	leadRepo     *repository.LeadRepository
	notifier     *notify.Queue
	logger       *zap.Logger
}

func NewFollowUpService(
	followUpRepo *repository.FollowUpRepository,
	quoteRepo *repository.QuoteRepository,
	leadRepo *repository.LeadRepository,
	notifier *notify.Queue,
	logger *zap.Logger,
) *FollowUpService {
	return &FollowUpService{
		followUpRepo: followUpRepo,
		quoteRepo:    quoteRepo,
		leadRepo:     leadRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// Schedule generates a batch of reminder entries anchored to now, each
// scheduled_for = now + intervalDays * sequence_number. A lead id that
// does not resolve is dropped rather than failing the batch; an existing
// pending batch rejects the whole call and creates no rows.
func (s *FollowUpService) Schedule(ctx context.Context, quoteID uuid.UUID, req *domain.ScheduleFollowUpsRequest) ([]domain.FollowUpEntryDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	intervalDays := req.IntervalDays
	if intervalDays == 0 {
		intervalDays = DefaultFollowUpIntervalDays
	}
	count := req.Count
	if count == 0 {
		count = DefaultFollowUpCount
	}

	var leadID *uuid.UUID
	if req.LeadID != nil {
		if _, err := s.leadRepo.GetByID(ctx, *req.LeadID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to verify lead: %w", err)
			}
			s.logger.Warn("lead not found, scheduling follow-ups without lead reference",
				zap.String("leadID", req.LeadID.String()),
				zap.String("quoteID", quoteID.String()))
		} else {
			leadID = req.LeadID
		}
	} else {
		leadID = quote.LeadID
	}

	pending, err := s.followUpRepo.HasPending(ctx, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending follow-ups: %w", err)
	}
	if pending {
		return nil, ErrFollowUpsPending
	}

	now := time.Now().UTC()
	entries := make([]domain.FollowUpEntry, count)
	for i := 0; i < count; i++ {
		seq := i + 1
		entries[i] = domain.FollowUpEntry{
			QuoteID:        quote.ID,
			LeadID:         leadID,
			SequenceNumber: seq,
			ScheduledFor:   now.AddDate(0, 0, intervalDays*seq),
			Status:         domain.FollowUpStatusPending,
		}
	}

	// The batch insert re-checks for a pending batch inside its
	// transaction, so two concurrent schedulers cannot both win.
	if err := s.followUpRepo.CreateBatch(ctx, entries); err != nil {
		if errors.Is(err, repository.ErrPendingBatchExists) {
			return nil, ErrFollowUpsPending
		}
		return nil, fmt.Errorf("failed to create follow-up batch: %w", err)
	}

	s.logger.Info("follow-up batch scheduled",
		zap.String("quoteID", quote.ID.String()),
		zap.Int("count", count),
		zap.Int("intervalDays", intervalDays))

	dtos := make([]domain.FollowUpEntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, mapper.ToFollowUpEntryDTO(&entries[i]))
	}
	return dtos, nil
}

// ListByQuote returns the quote's follow-up entries in sequence order
func (s *FollowUpService) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.FollowUpEntryDTO, error) {
	entries, err := s.followUpRepo.ListByQuote(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	dtos := make([]domain.FollowUpEntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, mapper.ToFollowUpEntryDTO(&entries[i]))
	}
	return dtos, nil
}

// DispatchDue sends a reminder for every pending entry whose scheduled
// time has passed and marks it sent. Returns the number dispatched.
func (s *FollowUpService) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.followUpRepo.ListDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due follow-ups: %w", err)
	}

	dispatched := 0
	for i := range due {
		entry := &due[i]

		quote, err := s.quoteRepo.GetByID(ctx, entry.QuoteID)
		if err != nil {
			s.logger.Warn("skipping follow-up for missing quote",
				zap.String("quoteID", entry.QuoteID.String()),
				zap.Error(err))
			continue
		}

		s.notifier.Enqueue(notify.Message{
			Event:   notify.EventFollowUpDue,
			Subject: fmt.Sprintf("Follow up with %s", quote.ClientName),
			Body:    fmt.Sprintf("Reminder %d for quote %s (%s), sent %s", entry.SequenceNumber, quote.QuoteNumber, quote.ClientName, quote.ClientEmail),
			Meta:    map[string]string{"quoteId": quote.ID.String()},
		})

		if err := s.followUpRepo.MarkSent(ctx, entry.ID, now); err != nil {
			s.logger.Error("failed to mark follow-up sent",
				zap.String("entryID", entry.ID.String()),
				zap.Error(err))
			continue
		}
		dispatched++
	}

	return dispatched, nil
}

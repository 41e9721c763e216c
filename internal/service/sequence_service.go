package service

import (
	"context"
	"fmt"
	"time"

	"github.com/solhaus/portal-api/internal/repository"
	"go.uber.org/zap"
)

// NumberSequenceService generates unique, formatted document numbers.
// Quotes and orders use independent counters per year.
//
// Format: {PREFIX}-{YEAR}-{SEQUENCE}
// Example: Q-2026-001, O-2026-017
type NumberSequenceService struct {
	repo   *repository.SequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.SequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
	}
}

// GenerateQuoteNumber generates a unique quote number. Called when a
// quote transitions from draft to sent, never at creation.
func (s *NumberSequenceService) GenerateQuoteNumber(ctx context.Context) (string, error) {
	return s.generateNumber(ctx, "quote", "Q")
}

// GenerateOrderNumber generates a unique order number, assigned when the
// order record is created.
func (s *NumberSequenceService) GenerateOrderNumber(ctx context.Context) (string, error) {
	return s.generateNumber(ctx, "order", "O")
}

func (s *NumberSequenceService) generateNumber(ctx context.Context, kind, prefix string) (string, error) {
	year := time.Now().Year()

	nextSeq, err := s.repo.GetNextNumber(ctx, kind, year)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.String("kind", kind),
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate %s number: %w", kind, err)
	}

	number := fmt.Sprintf("%s-%d-%03d", prefix, year, nextSeq)

	s.logger.Info("generated number",
		zap.String("kind", kind),
		zap.String("number", number))

	return number, nil
}

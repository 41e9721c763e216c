package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"github.com/solhaus/portal-api/internal/mapper"
	"github.com/solhaus/portal-api/internal/notify"
	"github.com/solhaus/portal-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LeadService handles incoming sales inquiries
type LeadService struct {
	leadRepo *repository.LeadRepository
	notifier *notify.Queue
	logger   *zap.Logger
}

func NewLeadService(
	leadRepo *repository.LeadRepository,
	notifier *notify.Queue,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo: leadRepo,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *LeadService) Create(ctx context.Context, req *domain.CreateLeadRequest) (*domain.LeadDTO, error) {
	lead := &domain.Lead{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Source:  req.Source,
		Message: req.Message,
		Status:  domain.LeadStatusNew,
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.notifier.Enqueue(notify.Message{
		Event:   notify.EventLeadCreated,
		Subject: fmt.Sprintf("New lead: %s", lead.Name),
		Body:    fmt.Sprintf("%s (%s) via %s: %s", lead.Name, lead.Email, lead.Source, lead.Message),
		Meta:    map[string]string{"leadId": lead.ID.String()},
	})

	s.logger.Info("lead created",
		zap.String("leadID", lead.ID.String()),
		zap.String("source", lead.Source))

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) List(ctx context.Context, page, pageSize int) ([]domain.LeadDTO, int64, error) {
	leads, total, err := s.leadRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	dtos := make([]domain.LeadDTO, 0, len(leads))
	for i := range leads {
		dtos = append(dtos, mapper.ToLeadDTO(&leads[i]))
	}
	return dtos, total, nil
}

func (s *LeadService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) (*domain.LeadDTO, error) {
	if _, err := s.leadRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	if err := s.leadRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update lead status: %w", err)
	}
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload lead: %w", err)
	}
	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

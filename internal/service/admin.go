package service

import (
	"context"
	"log/slog"

	"safetyshare/internal/domain"
	"safetyshare/internal/redis"

	"github.com/google/uuid"
)

type HazardAdminStore interface {
	Load(ctx context.Context, id uuid.UUID) (*domain.Hazard, error)
	Save(ctx context.Context, hazard *domain.Hazard) error
	List(ctx context.Context, page, limit int) ([]*domain.Hazard, int64, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type adminHazardService struct {
	store  HazardAdminStore
	cache  redis.HazardCacheService
	logger *slog.Logger
}

func NewAdminHazardService(store HazardAdminStore, cache redis.HazardCacheService, logger *slog.Logger) AdminHazardService {
	return &adminHazardService{store: store, cache: cache, logger: logger}
}

func (s *adminHazardService) List(ctx context.Context, page, limit int) ([]*domain.Hazard, int64, error) {
	return s.store.List(ctx, page, limit)
}

func (s *adminHazardService) Get(ctx context.Context, id uuid.UUID) (*domain.Hazard, error) {
	return s.store.Load(ctx, id)
}

// Update lets an operator override severity or status directly, bypassing
// consensus. Every change invalidates the active snapshot.
func (s *adminHazardService) Update(ctx context.Context, id uuid.UUID, req domain.UpdateHazardRequest) error {
	hazard, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if req.Severity != nil {
		hazard.Severity = *req.Severity
	}
	if req.Status != nil {
		hazard.Status = *req.Status
	}
	if err := s.store.Save(ctx, hazard); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("hazard cache invalidate failed", slog.Any("error", err))
	}

	s.logger.Info("hazard updated by admin",
		slog.String("hazard_id", id.String()),
		slog.String("status", string(hazard.Status)),
	)
	return nil
}

func (s *adminHazardService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("hazard cache invalidate failed", slog.Any("error", err))
	}
	return nil
}

package service

import (
	"context"

	"safetyshare/internal/domain"
)

type StatsRepository interface {
	CountUniqueUsers(ctx context.Context, minutes int) (int64, error)
	CountTotalChecks(ctx context.Context, minutes int) (int64, error)
	CountAlertsServed(ctx context.Context, minutes int) (int64, error)
}

type statsService struct {
	repo StatsRepository
}

func NewStatsService(repo StatsRepository) StatsService {
	return &statsService{repo: repo}
}

func (s *statsService) GetStats(ctx context.Context, req domain.StatsRequest) (*domain.DetectionStats, error) {
	minutes := req.Minutes
	if minutes == 0 {
		minutes = 60
	}

	unique, err := s.repo.CountUniqueUsers(ctx, minutes)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountTotalChecks(ctx, minutes)
	if err != nil {
		return nil, err
	}

	alerts, err := s.repo.CountAlertsServed(ctx, minutes)
	if err != nil {
		return nil, err
	}

	return &domain.DetectionStats{
		UserCount:    unique,
		TotalChecks:  total,
		AlertsServed: alerts,
		Minutes:      minutes,
	}, nil
}

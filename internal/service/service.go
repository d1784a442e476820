package service

import (
	"context"

	"safetyshare/internal/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go

// DetectionService is the hot path: one call per driver location update.
type DetectionService interface {
	Detect(ctx context.Context, req domain.DetectRequest) (domain.DetectResponse, error)
}

type HazardService interface {
	Report(ctx context.Context, req domain.ReportHazardRequest) (uuid.UUID, error)
	Nearby(ctx context.Context, req domain.NearbyRequest) ([]domain.AnnotatedHazard, error)
}

type ValidationService interface {
	Validate(ctx context.Context, req domain.ValidateRequest) (*domain.Hazard, error)
	History(ctx context.Context, hazardID uuid.UUID) ([]domain.Vote, error)
}

type AdminHazardService interface {
	List(ctx context.Context, page, limit int) ([]*domain.Hazard, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Hazard, error)
	Update(ctx context.Context, id uuid.UUID, req domain.UpdateHazardRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type StatsService interface {
	GetStats(ctx context.Context, req domain.StatsRequest) (*domain.DetectionStats, error)
}

type Service struct {
	DetectionService   DetectionService
	HazardService      HazardService
	ValidationService  ValidationService
	AdminHazardService AdminHazardService
	StatsService       StatsService
}

func NewService(
	detectionService DetectionService,
	hazardService HazardService,
	validationService ValidationService,
	adminHazardService AdminHazardService,
	statsService StatsService,
) *Service {
	return &Service{
		DetectionService:   detectionService,
		HazardService:      hazardService,
		ValidationService:  validationService,
		AdminHazardService: adminHazardService,
		StatsService:       statsService,
	}
}

func (s *Service) Detect(ctx context.Context, req domain.DetectRequest) (domain.DetectResponse, error) {
	return s.DetectionService.Detect(ctx, req)
}

func (s *Service) Report(ctx context.Context, req domain.ReportHazardRequest) (uuid.UUID, error) {
	return s.HazardService.Report(ctx, req)
}

func (s *Service) Nearby(ctx context.Context, req domain.NearbyRequest) ([]domain.AnnotatedHazard, error) {
	return s.HazardService.Nearby(ctx, req)
}

func (s *Service) Validate(ctx context.Context, req domain.ValidateRequest) (*domain.Hazard, error) {
	return s.ValidationService.Validate(ctx, req)
}

func (s *Service) History(ctx context.Context, hazardID uuid.UUID) ([]domain.Vote, error) {
	return s.ValidationService.History(ctx, hazardID)
}

func (s *Service) List(ctx context.Context, page, limit int) ([]*domain.Hazard, int64, error) {
	return s.AdminHazardService.List(ctx, page, limit)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Hazard, error) {
	return s.AdminHazardService.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req domain.UpdateHazardRequest) error {
	return s.AdminHazardService.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.AdminHazardService.Delete(ctx, id)
}

func (s *Service) GetStats(ctx context.Context, req domain.StatsRequest) (*domain.DetectionStats, error) {
	return s.StatsService.GetStats(ctx, req)
}

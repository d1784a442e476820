package service

import (
	"context"
	"log/slog"

	"safetyshare/internal/alerting"
	"safetyshare/internal/config"
	"safetyshare/internal/domain"
	"safetyshare/internal/geo"
	"safetyshare/internal/observability"
	"safetyshare/internal/redis"
	"safetyshare/pkg/e"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type HazardStore interface {
	Create(ctx context.Context, hazard *domain.Hazard) error
	FindNear(ctx context.Context, center domain.Coordinate, radiusMeters float64, statuses []domain.HazardStatus) ([]domain.Hazard, error)
	HasNearbyOfType(ctx context.Context, center domain.Coordinate, radiusMeters float64, t domain.HazardType) (bool, error)
	ListByStatus(ctx context.Context, statuses []domain.HazardStatus) ([]domain.Hazard, error)
}

type hazardService struct {
	store    HazardStore
	cache    redis.HazardCacheService
	notifier ActivityNotifier
	metrics  *observability.Metrics
	clock    clockwork.Clock
	logger   *slog.Logger
	cfg      config.DetectionConfig
}

func NewHazardService(
	store HazardStore,
	cache redis.HazardCacheService,
	notifier ActivityNotifier,
	metrics *observability.Metrics,
	clock clockwork.Clock,
	logger *slog.Logger,
	cfg config.DetectionConfig,
) HazardService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &hazardService{
		store:    store,
		cache:    cache,
		notifier: notifier,
		metrics:  metrics,
		clock:    clock,
		logger:   logger,
		cfg:      cfg,
	}
}

// Report creates a hazard in pending status. A second report of the same type
// within the duplicate radius is rejected so one pothole does not become five.
func (s *hazardService) Report(ctx context.Context, req domain.ReportHazardRequest) (uuid.UUID, error) {
	const op = "service.Hazard.Report"

	if !req.Location.Valid() {
		s.metrics.HazardReports.WithLabelValues("invalid").Inc()
		return uuid.Nil, e.Wrap(op, e.ErrInvalidCoordinates)
	}
	if req.ReportedBy == uuid.Nil {
		s.metrics.HazardReports.WithLabelValues("invalid").Inc()
		return uuid.Nil, e.Wrap(op, e.ErrInvalidUserID)
	}

	dup, err := s.store.HasNearbyOfType(ctx, req.Location, s.cfg.DuplicateMeters, req.Type)
	if err != nil {
		return uuid.Nil, e.Wrap(op, err)
	}
	if dup {
		s.metrics.HazardReports.WithLabelValues("duplicate").Inc()
		s.logger.Info("duplicate report rejected",
			slog.String("type", string(req.Type)),
			slog.Float64("lat", req.Location.Lat),
			slog.Float64("lng", req.Location.Lng),
		)
		return uuid.Nil, e.Wrap(op, e.ErrDuplicateHazard)
	}

	severity := req.Severity
	if severity == "" {
		severity = domain.SeverityMedium
	}

	now := s.clock.Now().UTC()
	hazard := &domain.Hazard{
		ID:          uuid.New(),
		Type:        req.Type,
		Location:    req.Location,
		Bearing:     req.Bearing,
		Severity:    severity,
		Status:      domain.StatusPending,
		ReportedBy:  req.ReportedBy,
		Description: req.Description,
		CreatedAt:   now,
		ExpiresAt:   now.Add(domain.Lifetime(req.Type)),
	}

	if err := s.store.Create(ctx, hazard); err != nil {
		return uuid.Nil, e.Wrap(op, err)
	}

	s.metrics.HazardReports.WithLabelValues("created").Inc()
	s.notifier.NotifyActivity(ctx, req.ReportedBy, string(domain.ActivityReport))

	s.logger.Info("hazard reported",
		slog.String("hazard_id", hazard.ID.String()),
		slog.String("type", string(hazard.Type)),
		slog.String("expires_at", hazard.ExpiresAt.Format("2006-01-02T15:04:05Z")),
	)

	return hazard.ID, nil
}

// Nearby serves the map view: active hazards around a point, closest first,
// annotated with distance and the level they would alert at. Served from the
// redis snapshot when warm.
func (s *hazardService) Nearby(ctx context.Context, req domain.NearbyRequest) ([]domain.AnnotatedHazard, error) {
	const op = "service.Hazard.Nearby"

	if !req.Location.Valid() {
		return nil, e.Wrap(op, e.ErrInvalidCoordinates)
	}

	radiusKm := req.RadiusKm
	if radiusKm <= 0 {
		radiusKm = s.cfg.SearchRadiusKm
	}
	radiusMeters := radiusKm * 1000

	hazards, err := s.activeHazards(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	out := make([]domain.AnnotatedHazard, 0, len(hazards))
	for _, h := range hazards {
		dist := geo.Distance(req.Location, h.Location)
		if dist > radiusMeters {
			continue
		}
		out = append(out, domain.AnnotatedHazard{
			Hazard:         h,
			DistanceMeters: dist,
			BearingDegrees: geo.Bearing(req.Location, h.Location),
			AlertLevel:     alerting.Classify(dist, h.Severity),
		})
	}
	sortByDistance(out)

	return out, nil
}

func (s *hazardService) activeHazards(ctx context.Context) ([]domain.Hazard, error) {
	cached, err := s.cache.GetActive(ctx)
	if err != nil {
		s.logger.Warn("hazard cache read failed, falling back to db", slog.Any("error", err))
	} else if cached != nil {
		return cached, nil
	}

	hazards, err := s.store.ListByStatus(ctx, []domain.HazardStatus{domain.StatusActive})
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetActive(ctx, hazards, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("hazard cache write failed", slog.Any("error", err))
	}

	return hazards, nil
}

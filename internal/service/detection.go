package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"safetyshare/internal/alerting"
	"safetyshare/internal/config"
	"safetyshare/internal/domain"
	"safetyshare/internal/geo"
	"safetyshare/internal/observability"
	"safetyshare/internal/relevance"
	"safetyshare/pkg/e"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type HazardFinder interface {
	FindNear(ctx context.Context, center domain.Coordinate, radiusMeters float64, statuses []domain.HazardStatus) ([]domain.Hazard, error)
}

type CheckRecorder interface {
	SaveCheck(ctx context.Context, check *domain.DetectionCheck) error
}

type AlertBroadcastQueue interface {
	Enqueue(ctx context.Context, payload domain.AlertBroadcast) error
}

type detectionService struct {
	hazards HazardFinder
	checks  CheckRecorder
	queue   AlertBroadcastQueue
	filter  *relevance.Filter
	dedup   *alerting.DedupCache
	metrics *observability.Metrics
	clock   clockwork.Clock
	logger  *slog.Logger
	cfg     config.DetectionConfig
}

func NewDetectionService(
	hazards HazardFinder,
	checks CheckRecorder,
	queue AlertBroadcastQueue,
	dedup *alerting.DedupCache,
	metrics *observability.Metrics,
	clock clockwork.Clock,
	logger *slog.Logger,
	cfg config.DetectionConfig,
) DetectionService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &detectionService{
		hazards: hazards,
		checks:  checks,
		queue:   queue,
		filter:  relevance.NewFilter(cfg.CorridorMeters),
		dedup:   dedup,
		metrics: metrics,
		clock:   clock,
		logger:  logger,
		cfg:     cfg,
	}
}

// Detect runs one location update through the full pipeline: spatial query,
// relevance filter, alert classification, cooldown, broadcast, audit row.
// The spatial query failing means we cannot promise the road is clear, so the
// whole request fails rather than returning an empty alert list.
func (s *detectionService) Detect(ctx context.Context, req domain.DetectRequest) (domain.DetectResponse, error) {
	const op = "service.Detection.Detect"

	started := time.Now()
	s.metrics.DetectionRequests.Inc()
	defer func() {
		s.metrics.DetectionDuration.Observe(time.Since(started).Seconds())
	}()

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return domain.DetectResponse{}, e.Wrap(op, e.ErrInvalidUserID)
	}
	if !req.Location.Valid() {
		s.logger.Warn("invalid coordinates",
			slog.String("user_id", req.UserID),
			slog.Float64("lat", req.Location.Lat),
			slog.Float64("lng", req.Location.Lng),
		)
		return domain.DetectResponse{}, e.Wrap(op, e.ErrInvalidCoordinates)
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	candidates, err := s.hazards.FindNear(queryCtx, req.Location, s.cfg.SearchRadiusKm*1000, []domain.HazardStatus{domain.StatusActive})
	if err != nil {
		s.logger.Error("spatial query failed", slog.String("op", op), slog.Any("error", err))
		return domain.DetectResponse{}, e.Wrap(op, e.ErrDependencyUnavailable)
	}

	var route []domain.Coordinate
	if req.RoutePolyline != "" {
		route = geo.DecodePolyline(req.RoutePolyline)
		if route == nil {
			// A bad route narrows nothing; alert on everything around instead.
			s.logger.Warn("route polyline decode failed, skipping route filter",
				slog.String("user_id", req.UserID))
		}
	}

	annotated := make([]domain.AnnotatedHazard, 0, len(candidates))
	for _, h := range candidates {
		annotated = append(annotated, domain.AnnotatedHazard{
			Hazard:         h,
			DistanceMeters: geo.Distance(req.Location, h.Location),
			BearingDegrees: geo.Bearing(req.Location, h.Location),
		})
	}

	relevant := s.filter.Apply(req.Heading, req.SpeedKmh, route, annotated)

	alerts := make([]domain.AlertRecord, 0, len(relevant))
	for _, rh := range relevant {
		level := alerting.Classify(rh.DistanceMeters, rh.Severity)
		if level == domain.AlertNone {
			continue
		}
		if !s.dedup.ShouldEmit(userID, rh.ID) {
			s.metrics.AlertsSuppressed.Inc()
			continue
		}
		s.dedup.RecordEmission(userID, rh.ID)
		s.metrics.AlertsEmitted.WithLabelValues(string(level)).Inc()

		alerts = append(alerts, domain.AlertRecord{
			HazardID:       rh.ID,
			Type:           rh.Type,
			Severity:       rh.Severity,
			AlertLevel:     level,
			DistanceMeters: rh.DistanceMeters,
			VoiceMessage:   alerting.VoiceMessage(level, rh.Type, rh.DistanceMeters),
			Location:       rh.Location,
		})
	}

	nearby := s.annotateNearby(annotated)

	if len(alerts) > 0 {
		payload := domain.AlertBroadcast{
			UserID:    userID,
			Location:  req.Location,
			Alerts:    alerts,
			EmittedAt: s.clock.Now().UTC(),
		}
		if err := s.queue.Enqueue(ctx, payload); err != nil {
			s.logger.Error("enqueue broadcast failed", slog.Any("error", err))
		} else {
			s.metrics.BroadcastsQueued.Inc()
		}
	}

	check := &domain.DetectionCheck{
		UserID:     userID,
		Location:   req.Location,
		HazardIDs:  alertIDs(alerts),
		AlertCount: len(alerts),
		CheckedAt:  s.clock.Now().UTC(),
	}
	if err := s.checks.SaveCheck(ctx, check); err != nil {
		s.logger.Error("save detection check failed", slog.Any("error", err))
	}

	s.logger.Info("detection done",
		slog.String("user_id", req.UserID),
		slog.Int("candidates", len(candidates)),
		slog.Int("relevant", len(relevant)),
		slog.Int("alerts", len(alerts)),
	)

	return domain.DetectResponse{Alerts: alerts, Nearby: nearby}, nil
}

// annotateNearby caps the already distance-sorted candidate list and labels
// each entry with the level it would alert at.
func (s *detectionService) annotateNearby(annotated []domain.AnnotatedHazard) []domain.AnnotatedHazard {
	sorted := make([]domain.AnnotatedHazard, len(annotated))
	copy(sorted, annotated)
	sortByDistance(sorted)

	limit := s.cfg.NearbyLimit
	if limit <= 0 {
		limit = 5
	}
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	for i := range sorted {
		sorted[i].AlertLevel = alerting.Classify(sorted[i].DistanceMeters, sorted[i].Severity)
	}
	return sorted
}

func sortByDistance(hazards []domain.AnnotatedHazard) {
	sort.Slice(hazards, func(i, j int) bool {
		return hazards[i].DistanceMeters < hazards[j].DistanceMeters
	})
}

func alertIDs(alerts []domain.AlertRecord) []uuid.UUID {
	ids := make([]uuid.UUID, len(alerts))
	for i, a := range alerts {
		ids[i] = a.HazardID
	}
	return ids
}

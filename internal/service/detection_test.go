package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/twpayne/go-polyline"

	"safetyshare/internal/alerting"
	"safetyshare/internal/config"
	"safetyshare/internal/domain"
	"safetyshare/internal/observability"
	"safetyshare/internal/service"
	"safetyshare/pkg/e"
	"safetyshare/pkg/logger"
)

type fakeHazardFinder struct {
	hazards []domain.Hazard
	err     error
	calls   int
}

func (f *fakeHazardFinder) FindNear(_ context.Context, _ domain.Coordinate, _ float64, _ []domain.HazardStatus) ([]domain.Hazard, error) {
	f.calls++
	return f.hazards, f.err
}

type fakeCheckRecorder struct {
	saved []*domain.DetectionCheck
	err   error
}

func (f *fakeCheckRecorder) SaveCheck(_ context.Context, c *domain.DetectionCheck) error {
	f.saved = append(f.saved, c)
	return f.err
}

type fakeBroadcastQueue struct {
	payloads []domain.AlertBroadcast
	err      error
}

func (f *fakeBroadcastQueue) Enqueue(_ context.Context, p domain.AlertBroadcast) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

func testDetectionConfig() config.DetectionConfig {
	return config.DetectionConfig{
		SearchRadiusKm:  5,
		CorridorMeters:  80,
		AlertCooldown:   10 * time.Minute,
		QueryTimeout:    2 * time.Second,
		NearbyLimit:     5,
		DuplicateMeters: 50,
		CacheTTL:        30 * time.Second,
	}
}

// activeHazard places a critical accident roughly 150m north of the driver.
func activeHazard(lat, lng float64, sev domain.Severity) domain.Hazard {
	return domain.Hazard{
		ID:       uuid.New(),
		Type:     domain.HazardAccident,
		Location: domain.Coordinate{Lat: lat, Lng: lng},
		Severity: sev,
		Status:   domain.StatusActive,
	}
}

func newDetectionService(finder *fakeHazardFinder, checks *fakeCheckRecorder, queue *fakeBroadcastQueue, clock clockwork.Clock) service.DetectionService {
	cfg := testDetectionConfig()
	dedup := alerting.NewDedupCache(cfg.AlertCooldown, clock)
	return service.NewDetectionService(
		finder, checks, queue, dedup,
		observability.NewMetricsForTesting(),
		clock, logger.Discard(), cfg,
	)
}

func TestDetection_UrgentAlertForCloseCriticalHazard(t *testing.T) {
	driver := domain.Coordinate{Lat: 12.9716, Lng: 77.5946}
	hazard := activeHazard(12.97295, 77.5946, domain.SeverityCritical) // ~150m north

	finder := &fakeHazardFinder{hazards: []domain.Hazard{hazard}}
	checks := &fakeCheckRecorder{}
	queue := &fakeBroadcastQueue{}
	clock := clockwork.NewFakeClock()

	svc := newDetectionService(finder, checks, queue, clock)

	heading := 0.0 // moving north, hazard straight ahead
	resp, err := svc.Detect(context.Background(), domain.DetectRequest{
		UserID:   uuid.NewString(),
		Location: driver,
		Heading:  &heading,
		SpeedKmh: 40,
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if len(resp.Alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(resp.Alerts))
	}
	a := resp.Alerts[0]
	if a.AlertLevel != domain.AlertUrgent {
		t.Fatalf("expected urgent, got %s", a.AlertLevel)
	}
	if a.VoiceMessage != "Warning: Critical accident ahead." {
		t.Fatalf("unexpected voice message: %q", a.VoiceMessage)
	}

	if len(queue.payloads) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(queue.payloads))
	}
	if len(checks.saved) != 1 || checks.saved[0].AlertCount != 1 {
		t.Fatalf("expected audit row with 1 alert, got %+v", checks.saved)
	}
}

func TestDetection_CooldownSuppressesRepeatAlert(t *testing.T) {
	driver := domain.Coordinate{Lat: 12.9716, Lng: 77.5946}
	hazard := activeHazard(12.97295, 77.5946, domain.SeverityCritical)

	finder := &fakeHazardFinder{hazards: []domain.Hazard{hazard}}
	checks := &fakeCheckRecorder{}
	queue := &fakeBroadcastQueue{}
	clock := clockwork.NewFakeClock()

	svc := newDetectionService(finder, checks, queue, clock)

	heading := 0.0
	req := domain.DetectRequest{
		UserID:   uuid.NewString(),
		Location: driver,
		Heading:  &heading,
		SpeedKmh: 40,
	}

	first, err := svc.Detect(context.Background(), req)
	if err != nil {
		t.Fatalf("first Detect: %v", err)
	}
	if len(first.Alerts) != 1 {
		t.Fatalf("expected first call to alert")
	}

	second, err := svc.Detect(context.Background(), req)
	if err != nil {
		t.Fatalf("second Detect: %v", err)
	}
	if len(second.Alerts) != 0 {
		t.Fatalf("expected cooldown to suppress, got %d alerts", len(second.Alerts))
	}
	if len(queue.payloads) != 1 {
		t.Fatalf("suppressed alerts must not broadcast, got %d payloads", len(queue.payloads))
	}

	// The hazard still shows up in the nearby list while suppressed.
	if len(second.Nearby) != 1 {
		t.Fatalf("expected nearby to keep the hazard, got %d", len(second.Nearby))
	}

	clock.Advance(10*time.Minute + time.Millisecond)

	third, err := svc.Detect(context.Background(), req)
	if err != nil {
		t.Fatalf("third Detect: %v", err)
	}
	if len(third.Alerts) != 1 {
		t.Fatalf("expected alert again after cooldown, got %d", len(third.Alerts))
	}
}

func TestDetection_SpatialQueryFailureFailsClosed(t *testing.T) {
	finder := &fakeHazardFinder{err: errors.New("connection refused")}
	svc := newDetectionService(finder, &fakeCheckRecorder{}, &fakeBroadcastQueue{}, clockwork.NewFakeClock())

	_, err := svc.Detect(context.Background(), domain.DetectRequest{
		UserID:   uuid.NewString(),
		Location: domain.Coordinate{Lat: 12.9716, Lng: 77.5946},
	})
	if !errors.Is(err, e.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got: %v", err)
	}
}

func TestDetection_InvalidUserID(t *testing.T) {
	svc := newDetectionService(&fakeHazardFinder{}, &fakeCheckRecorder{}, &fakeBroadcastQueue{}, clockwork.NewFakeClock())

	_, err := svc.Detect(context.Background(), domain.DetectRequest{
		UserID:   "not-a-uuid",
		Location: domain.Coordinate{Lat: 12.9716, Lng: 77.5946},
	})
	if !errors.Is(err, e.ErrInvalidUserID) {
		t.Fatalf("expected ErrInvalidUserID, got: %v", err)
	}
}

func TestDetection_InvalidCoordinates(t *testing.T) {
	svc := newDetectionService(&fakeHazardFinder{}, &fakeCheckRecorder{}, &fakeBroadcastQueue{}, clockwork.NewFakeClock())

	_, err := svc.Detect(context.Background(), domain.DetectRequest{
		UserID:   uuid.NewString(),
		Location: domain.Coordinate{Lat: 95, Lng: 77},
	})
	if !errors.Is(err, e.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got: %v", err)
	}
}

func TestDetection_MalformedPolylineStillAlerts(t *testing.T) {
	driver := domain.Coordinate{Lat: 12.9716, Lng: 77.5946}
	hazard := activeHazard(12.97295, 77.5946, domain.SeverityCritical)

	finder := &fakeHazardFinder{hazards: []domain.Hazard{hazard}}
	svc := newDetectionService(finder, &fakeCheckRecorder{}, &fakeBroadcastQueue{}, clockwork.NewFakeClock())

	heading := 0.0
	resp, err := svc.Detect(context.Background(), domain.DetectRequest{
		UserID:        uuid.NewString(),
		Location:      driver,
		Heading:       &heading,
		SpeedKmh:      40,
		RoutePolyline: "!!!garbage!!!",
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(resp.Alerts) != 1 {
		t.Fatalf("bad polyline must not drop alerts, got %d", len(resp.Alerts))
	}
}

func TestDetection_RouteCorridorExcludesOffRouteHazard(t *testing.T) {
	driver := domain.Coordinate{Lat: 12.98, Lng: 77.5946}

	// Route runs due north along lng 77.5946; the hazard sits ~500m east of it.
	route := [][]float64{
		{12.98, 77.5946},
		{12.99, 77.5946},
	}
	encoded := string(polyline.EncodeCoords(route))

	offRoute := activeHazard(12.985, 77.5992, domain.SeverityCritical)

	finder := &fakeHazardFinder{hazards: []domain.Hazard{offRoute}}
	svc := newDetectionService(finder, &fakeCheckRecorder{}, &fakeBroadcastQueue{}, clockwork.NewFakeClock())

	heading := 0.0
	resp, err := svc.Detect(context.Background(), domain.DetectRequest{
		UserID:        uuid.NewString(),
		Location:      driver,
		Heading:       &heading,
		SpeedKmh:      40,
		RoutePolyline: encoded,
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(resp.Alerts) != 0 {
		t.Fatalf("expected off-route hazard filtered, got %d alerts", len(resp.Alerts))
	}
}

func TestDetection_NearbyCappedAndSorted(t *testing.T) {
	driver := domain.Coordinate{Lat: 12.9716, Lng: 77.5946}

	var hazards []domain.Hazard
	for i := 0; i < 8; i++ {
		hazards = append(hazards, activeHazard(12.9716+float64(i+1)*0.001, 77.5946, domain.SeverityLow))
	}

	finder := &fakeHazardFinder{hazards: hazards}
	svc := newDetectionService(finder, &fakeCheckRecorder{}, &fakeBroadcastQueue{}, clockwork.NewFakeClock())

	resp, err := svc.Detect(context.Background(), domain.DetectRequest{
		UserID:   uuid.NewString(),
		Location: driver,
		SpeedKmh: 0,
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if len(resp.Nearby) != 5 {
		t.Fatalf("expected nearby capped at 5, got %d", len(resp.Nearby))
	}
	for i := 1; i < len(resp.Nearby); i++ {
		if resp.Nearby[i-1].DistanceMeters > resp.Nearby[i].DistanceMeters {
			t.Fatalf("expected nearby sorted ascending by distance")
		}
	}
}

package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"safetyshare/internal/consensus"
	"safetyshare/internal/domain"
	"safetyshare/internal/observability"
	"safetyshare/internal/service"
	"safetyshare/pkg/e"
	"safetyshare/pkg/logger"
)

type memHazardRepo struct {
	hazards map[uuid.UUID]*domain.Hazard
}

func newMemHazardRepo(hazards ...*domain.Hazard) *memHazardRepo {
	m := &memHazardRepo{hazards: make(map[uuid.UUID]*domain.Hazard)}
	for _, h := range hazards {
		cp := *h
		m.hazards[h.ID] = &cp
	}
	return m
}

func (m *memHazardRepo) Load(_ context.Context, id uuid.UUID) (*domain.Hazard, error) {
	h, ok := m.hazards[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *memHazardRepo) Save(_ context.Context, h *domain.Hazard) error {
	cp := *h
	m.hazards[h.ID] = &cp
	return nil
}

type memVoteLedger struct {
	votes map[string]*domain.Vote
}

func newMemVoteLedger() *memVoteLedger {
	return &memVoteLedger{votes: make(map[string]*domain.Vote)}
}

func (m *memVoteLedger) HasVoted(_ context.Context, hazardID, userID uuid.UUID) (bool, error) {
	_, ok := m.votes[hazardID.String()+userID.String()]
	return ok, nil
}

func (m *memVoteLedger) Record(_ context.Context, v *domain.Vote) error {
	key := v.HazardID.String() + v.UserID.String()
	if _, ok := m.votes[key]; ok {
		return e.ErrUniqueViolation
	}
	m.votes[key] = v
	return nil
}

func (m *memVoteLedger) ListByHazard(_ context.Context, hazardID uuid.UUID) ([]domain.Vote, error) {
	var out []domain.Vote
	for _, v := range m.votes {
		if v.HazardID == hazardID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func newValidationService(repo *memHazardRepo, ledger *memVoteLedger, cache *fakeHazardCache) service.ValidationService {
	engine := consensus.NewEngine(repo, ledger, &consensusNotifier{}, clockwork.NewFakeClock(), logger.Discard())
	return service.NewValidationService(
		engine, ledger, cache,
		observability.NewMetricsForTesting(),
		logger.Discard(),
	)
}

type consensusNotifier struct{}

func (consensusNotifier) NotifyActivity(context.Context, uuid.UUID, string) {}

func pendingHazard() *domain.Hazard {
	return &domain.Hazard{
		ID:         uuid.New(),
		Type:       domain.HazardPothole,
		Location:   domain.Coordinate{Lat: 12.9716, Lng: 77.5946},
		Severity:   domain.SeverityMedium,
		Status:     domain.StatusPending,
		ReportedBy: uuid.New(),
	}
}

func TestValidate_AppliedVoteInvalidatesCache(t *testing.T) {
	h := pendingHazard()
	repo := newMemHazardRepo(h)
	cache := &fakeHazardCache{snapshot: []domain.Hazard{*h}}

	svc := newValidationService(repo, newMemVoteLedger(), cache)

	got, err := svc.Validate(context.Background(), domain.ValidateRequest{
		HazardID: h.ID,
		UserID:   uuid.New(),
		Role:     domain.RoleDriver,
		Action:   domain.ActionConfirm,
		Location: domain.Coordinate{Lat: 12.9717, Lng: 77.5946},
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.ConfirmScore != 1 {
		t.Fatalf("expected confirm score 1, got %d", got.ConfirmScore)
	}
	if cache.invalidates != 1 {
		t.Fatalf("expected cache invalidated once, got %d", cache.invalidates)
	}
}

func TestValidate_TooFarPassesThrough(t *testing.T) {
	h := pendingHazard()
	svc := newValidationService(newMemHazardRepo(h), newMemVoteLedger(), &fakeHazardCache{})

	_, err := svc.Validate(context.Background(), domain.ValidateRequest{
		HazardID: h.ID,
		UserID:   uuid.New(),
		Role:     domain.RoleDriver,
		Action:   domain.ActionConfirm,
		Location: domain.Coordinate{Lat: 12.99, Lng: 77.5946}, // ~2km away
	})
	if !errors.Is(err, e.ErrTooFar) {
		t.Fatalf("expected ErrTooFar, got: %v", err)
	}
}

func TestValidate_RejectedVoteLeavesCacheAlone(t *testing.T) {
	h := pendingHazard()
	cache := &fakeHazardCache{}
	svc := newValidationService(newMemHazardRepo(h), newMemVoteLedger(), cache)

	_, err := svc.Validate(context.Background(), domain.ValidateRequest{
		HazardID: h.ID,
		UserID:   h.ReportedBy, // reporter cannot vote
		Role:     domain.RoleDriver,
		Action:   domain.ActionConfirm,
		Location: domain.Coordinate{Lat: 12.9717, Lng: 77.5946},
	})
	if !errors.Is(err, e.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got: %v", err)
	}
	if cache.invalidates != 0 {
		t.Fatalf("rejected vote must not invalidate the cache")
	}
}

func TestHistory_ReturnsLedgerVotes(t *testing.T) {
	h := pendingHazard()
	ledger := newMemVoteLedger()
	svc := newValidationService(newMemHazardRepo(h), ledger, &fakeHazardCache{})

	for i := 0; i < 2; i++ {
		_, err := svc.Validate(context.Background(), domain.ValidateRequest{
			HazardID: h.ID,
			UserID:   uuid.New(),
			Role:     domain.RoleDriver,
			Action:   domain.ActionConfirm,
			Location: domain.Coordinate{Lat: 12.9717, Lng: 77.5946},
		})
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
	}

	votes, err := svc.History(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(votes) != 2 {
		t.Fatalf("expected 2 votes, got %d", len(votes))
	}
}

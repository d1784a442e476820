// Package consensus resolves community validation votes into authoritative
// hazard status transitions.
package consensus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"safetyshare/internal/domain"
	"safetyshare/internal/geo"
	"safetyshare/pkg/e"
)

const (
	// Max distance a voter may stand from the hazard.
	maxVoteDistanceMeters = 500.0

	confirmThreshold = 3
	rejectThreshold  = 5
	resolveThreshold = 2
)

// VoteWeight is the policy knob for role-based weighting: elevated roles count
// double toward confirm/reject scores. Swappable without touching the state
// machine.
func VoteWeight(role domain.Role) int {
	if role.Elevated() {
		return 2
	}
	return 1
}

type HazardRepository interface {
	Load(ctx context.Context, id uuid.UUID) (*domain.Hazard, error)
	Save(ctx context.Context, hazard *domain.Hazard) error
}

type VoteLedger interface {
	HasVoted(ctx context.Context, hazardID, userID uuid.UUID) (bool, error)
	Record(ctx context.Context, vote *domain.Vote) error // e.ErrUniqueViolation on duplicate
}

// ActivityNotifier is the fire-and-forget hook into the reputation system.
type ActivityNotifier interface {
	NotifyActivity(ctx context.Context, userID uuid.UUID, kind string)
}

type Engine struct {
	hazards  HazardRepository
	ledger   VoteLedger
	notifier ActivityNotifier
	clock    clockwork.Clock
	logger   *slog.Logger

	locks *keyedMutex
}

func NewEngine(hazards HazardRepository, ledger VoteLedger, notifier ActivityNotifier, clock clockwork.Clock, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		hazards:  hazards,
		ledger:   ledger,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
		locks:    newKeyedMutex(),
	}
}

// ApplyVote runs one validation action through the gates and, if it passes,
// records the vote and recomputes the hazard status. Calls for the same hazard
// are serialized; different hazards proceed in parallel.
func (eng *Engine) ApplyVote(ctx context.Context, hazardID, voterID uuid.UUID, role domain.Role, action domain.VoteAction, voterLocation domain.Coordinate) (*domain.Hazard, error) {
	const op = "consensus.Engine.ApplyVote"

	if !action.Valid() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidAction)
	}
	if !voterLocation.Valid() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}

	unlock := eng.locks.Lock(hazardID)
	defer unlock()

	hazard, err := eng.hazards.Load(ctx, hazardID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, e.ErrDependencyUnavailable)
	}

	// Gate 0: terminal statuses never move again, for any voter or action.
	if hazard.Status.Terminal() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrAlreadyTerminal)
	}

	// Gate 1: the voter has to actually be at the scene.
	if geo.Distance(voterLocation, hazard.Location) > maxVoteDistanceMeters {
		return nil, fmt.Errorf("%s: %w", op, e.ErrTooFar)
	}

	// Gate 2: reporters don't vote on their own hazards.
	if voterID == hazard.ReportedBy {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotAuthorized)
	}

	// Gate 3: one vote per user per hazard, regardless of action.
	voted, err := eng.ledger.HasVoted(ctx, hazardID, voterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, e.ErrDependencyUnavailable)
	}
	if voted {
		return nil, fmt.Errorf("%s: %w", op, e.ErrAlreadyVoted)
	}

	vote := &domain.Vote{
		ID:        uuid.New(),
		HazardID:  hazardID,
		UserID:    voterID,
		Action:    action,
		Location:  voterLocation,
		CreatedAt: eng.clock.Now().UTC(),
	}
	if err := eng.ledger.Record(ctx, vote); err != nil {
		// The ledger's uniqueness constraint is the backstop for racing votes.
		if errors.Is(err, e.ErrUniqueViolation) || errors.Is(err, e.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrAlreadyVoted)
		}
		return nil, fmt.Errorf("%s: %w", op, e.ErrDependencyUnavailable)
	}

	eng.applyTransition(hazard, voterID, role, action)

	if err := eng.hazards.Save(ctx, hazard); err != nil {
		eng.logger.Error("hazard save after vote failed",
			slog.String("op", op),
			slog.String("hazard_id", hazardID.String()),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%s: %w", op, e.ErrDependencyUnavailable)
	}

	// Reputation signal is best effort; a failure there never rolls the vote back.
	if eng.notifier != nil {
		eng.notifier.NotifyActivity(ctx, voterID, "validate")
	}

	eng.logger.Info("vote applied",
		slog.String("hazard_id", hazardID.String()),
		slog.String("action", string(action)),
		slog.String("status", string(hazard.Status)),
		slog.Int("confirm_score", hazard.ConfirmScore),
		slog.Int("reject_score", hazard.RejectScore),
	)

	return hazard, nil
}

// applyTransition mutates counters and status for one accepted vote. The
// caller holds the per-hazard lock and has already ruled out terminal states.
func (eng *Engine) applyTransition(hazard *domain.Hazard, voterID uuid.UUID, role domain.Role, action domain.VoteAction) {
	weight := VoteWeight(role)

	switch action {
	case domain.ActionConfirm:
		hazard.ConfirmScore += weight
		if hazard.Status == domain.StatusPending && hazard.ConfirmScore >= confirmThreshold {
			hazard.Status = domain.StatusActive
		}

	case domain.ActionReject:
		hazard.RejectScore += weight
		if hazard.RejectScore >= rejectThreshold {
			hazard.Status = domain.StatusExpired
		}

	case domain.ActionResolve:
		// Resolve votes count per voter; elevated roles short-circuit.
		hazard.ResolveVotes++
		if hazard.ResolveVotes >= resolveThreshold || role.Elevated() {
			now := eng.clock.Now().UTC()
			hazard.Status = domain.StatusResolved
			hazard.ResolvedBy = &voterID
			hazard.ResolvedAt = &now
		}
	}
}

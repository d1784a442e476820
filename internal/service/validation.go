package service

import (
	"context"
	"errors"
	"log/slog"

	"safetyshare/internal/consensus"
	"safetyshare/internal/domain"
	"safetyshare/internal/observability"
	"safetyshare/internal/redis"
	"safetyshare/pkg/e"

	"github.com/google/uuid"
)

type VoteHistory interface {
	ListByHazard(ctx context.Context, hazardID uuid.UUID) ([]domain.Vote, error)
}

type validationService struct {
	engine  *consensus.Engine
	history VoteHistory
	cache   redis.HazardCacheService
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewValidationService(
	engine *consensus.Engine,
	history VoteHistory,
	cache redis.HazardCacheService,
	metrics *observability.Metrics,
	logger *slog.Logger,
) ValidationService {
	return &validationService{
		engine:  engine,
		history: history,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Validate runs one vote through the consensus engine and keeps the active
// hazard cache honest when the vote changes a status.
func (s *validationService) Validate(ctx context.Context, req domain.ValidateRequest) (*domain.Hazard, error) {
	const op = "service.Validation.Validate"

	hazard, err := s.engine.ApplyVote(ctx, req.HazardID, req.UserID, req.Role, req.Action, req.Location)
	if err != nil {
		s.metrics.Votes.WithLabelValues(string(req.Action), "rejected").Inc()
		if isVoteRejection(err) {
			s.logger.Info("vote rejected",
				slog.String("hazard_id", req.HazardID.String()),
				slog.String("action", string(req.Action)),
				slog.Any("reason", err),
			)
		}
		return nil, e.Wrap(op, err)
	}

	s.metrics.Votes.WithLabelValues(string(req.Action), "applied").Inc()

	// Status changes make the cached active snapshot stale.
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("hazard cache invalidate failed", slog.Any("error", err))
	}

	return hazard, nil
}

func (s *validationService) History(ctx context.Context, hazardID uuid.UUID) ([]domain.Vote, error) {
	const op = "service.Validation.History"

	votes, err := s.history.ListByHazard(ctx, hazardID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return votes, nil
}

func isVoteRejection(err error) bool {
	return errors.Is(err, e.ErrTooFar) ||
		errors.Is(err, e.ErrNotAuthorized) ||
		errors.Is(err, e.ErrAlreadyVoted) ||
		errors.Is(err, e.ErrAlreadyTerminal) ||
		errors.Is(err, e.ErrInvalidAction)
}

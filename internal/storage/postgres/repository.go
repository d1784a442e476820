package postgres

import (
	"context"
	"time"

	"safetyshare/internal/domain"

	"github.com/google/uuid"
)

type HazardRepository interface {
	Create(ctx context.Context, hazard *domain.Hazard) error
	Load(ctx context.Context, id uuid.UUID) (*domain.Hazard, error)
	Save(ctx context.Context, hazard *domain.Hazard) error
	List(ctx context.Context, page, limit int) ([]*domain.Hazard, int64, error)
	ListByStatus(ctx context.Context, statuses []domain.HazardStatus) ([]domain.Hazard, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	FindNear(ctx context.Context, center domain.Coordinate, radiusMeters float64, statuses []domain.HazardStatus) ([]domain.Hazard, error)
	HasNearbyOfType(ctx context.Context, center domain.Coordinate, radiusMeters float64, t domain.HazardType) (bool, error)
}

type VoteLedger interface {
	HasVoted(ctx context.Context, hazardID, userID uuid.UUID) (bool, error)
	Record(ctx context.Context, vote *domain.Vote) error
	ListByHazard(ctx context.Context, hazardID uuid.UUID) ([]domain.Vote, error)
}

type StatsRepository interface {
	SaveCheck(ctx context.Context, check *domain.DetectionCheck) error
	CountUniqueUsers(ctx context.Context, minutes int) (int64, error)
	CountTotalChecks(ctx context.Context, minutes int) (int64, error)
	CountAlertsServed(ctx context.Context, minutes int) (int64, error)
}

func (p *Postgres) Hazards() HazardRepository { return p.HazardStore }
func (p *Postgres) Votes() VoteLedger         { return p.VoteStore }
func (p *Postgres) Stats() StatsRepository    { return p.Stat }

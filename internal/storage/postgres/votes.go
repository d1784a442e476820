package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"safetyshare/internal/domain"
	"safetyshare/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VoteRepo is the validation ledger. The unique (hazard_id, user_id) index is
// the hard backstop for the one-vote-per-user invariant.
type VoteRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewVoteRepo(pool *pgxpool.Pool, logger *slog.Logger) *VoteRepo {
	return &VoteRepo{pool: pool, logger: logger}
}

func (p *VoteRepo) HasVoted(ctx context.Context, hazardID, userID uuid.UUID) (bool, error) {
	const op = "postgres.Vote.HasVoted"

	const query = `SELECT EXISTS (SELECT 1 FROM validation_votes WHERE hazard_id = $1 AND user_id = $2)`

	var exists bool
	if err := p.pool.QueryRow(ctx, query, hazardID, userID).Scan(&exists); err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return false, e.WrapError(ctx, op, err)
	}
	return exists, nil
}

func (p *VoteRepo) Record(ctx context.Context, v *domain.Vote) error {
	const op = "postgres.Vote.Record"

	if v == nil || v.HazardID == uuid.Nil || v.UserID == uuid.Nil {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	const query = `
INSERT INTO validation_votes (id, hazard_id, user_id, action, geo_point, created_at)
VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326), $7)
`

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	_, err := p.pool.Exec(ctx, query,
		v.ID,
		v.HazardID,
		v.UserID,
		v.Action,
		v.Location.Lng,
		v.Location.Lat,
		v.CreatedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed",
			slog.String("op", op),
			slog.Any("error", err),
			slog.String("hazard_id", v.HazardID.String()),
		)
		return e.WrapError(ctx, op, err)
	}

	return nil
}

// ListByHazard returns the vote history for a hazard, newest first.
func (p *VoteRepo) ListByHazard(ctx context.Context, hazardID uuid.UUID) ([]domain.Vote, error) {
	const op = "postgres.Vote.ListByHazard"

	const query = `
SELECT id, hazard_id, user_id, action,
       ST_Y(geo_point::geometry) AS lat,
       ST_X(geo_point::geometry) AS lng,
       created_at
FROM validation_votes
WHERE hazard_id = $1
ORDER BY created_at DESC
`

	rows, err := p.pool.Query(ctx, query, hazardID)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	votes := make([]domain.Vote, 0, 8)
	for rows.Next() {
		var v domain.Vote
		if err := rows.Scan(
			&v.ID,
			&v.HazardID,
			&v.UserID,
			&v.Action,
			&v.Location.Lat,
			&v.Location.Lng,
			&v.CreatedAt,
		); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	return votes, nil
}

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

type StatsRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewStats(pool *pgxpool.Pool, logger *slog.Logger) *StatsRepo {
	return &StatsRepo{pool: pool, logger: logger}
}

func (p *StatsRepo) SaveCheck(ctx context.Context, check *domain.DetectionCheck) error {
	const op = "postgres.DetectionCheck.Save"

	if check == nil || check.UserID == uuid.Nil {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if !check.Location.Valid() {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}

	const query = `
INSERT INTO detection_checks (id, user_id, lat, lng, hazard_ids, alert_count, checked_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

	if check.ID == uuid.Nil {
		check.ID = uuid.New()
	}
	if check.CheckedAt.IsZero() {
		check.CheckedAt = time.Now().UTC()
	}

	_, err := p.pool.Exec(ctx, query,
		check.ID,
		check.UserID,
		check.Location.Lat,
		check.Location.Lng,
		check.HazardIDs,
		check.AlertCount,
		check.CheckedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed",
			slog.String("op", op),
			slog.Any("error", err),
			slog.String("user_id", check.UserID.String()),
		)
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (p *StatsRepo) CountUniqueUsers(ctx context.Context, minutes int) (int64, error) {
	const op = "postgres.Stats.CountUniqueUsers"

	const query = `
SELECT COUNT(DISTINCT user_id)
FROM detection_checks
WHERE checked_at > NOW() - $1 * INTERVAL '1 minute'
`

	var count int64
	if err := p.pool.QueryRow(ctx, query, minutes).Scan(&count); err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}
	return count, nil
}

func (p *StatsRepo) CountTotalChecks(ctx context.Context, minutes int) (int64, error) {
	const op = "postgres.Stats.CountTotalChecks"

	const query = `
SELECT COUNT(*)
FROM detection_checks
WHERE checked_at > NOW() - $1 * INTERVAL '1 minute'
`

	var count int64
	if err := p.pool.QueryRow(ctx, query, minutes).Scan(&count); err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}
	return count, nil
}

func (p *StatsRepo) CountAlertsServed(ctx context.Context, minutes int) (int64, error) {
	const op = "postgres.Stats.CountAlertsServed"

	const query = `
SELECT COALESCE(SUM(alert_count), 0)
FROM detection_checks
WHERE checked_at > NOW() - $1 * INTERVAL '1 minute'
`

	var count int64
	if err := p.pool.QueryRow(ctx, query, minutes).Scan(&count); err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}
	return count, nil
}

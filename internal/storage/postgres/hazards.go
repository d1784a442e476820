package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"safetyshare/internal/domain"
	"safetyshare/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HazardRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewHazardRepo(pool *pgxpool.Pool, logger *slog.Logger) *HazardRepo {
	return &HazardRepo{pool: pool, logger: logger}
}

const hazardColumns = `
	id,
	type,
	ST_Y(geo_point::geometry) AS lat,
	ST_X(geo_point::geometry) AS lng,
	bearing,
	severity,
	status,
	reported_by,
	description,
	confirm_score,
	reject_score,
	resolve_votes,
	resolved_by,
	resolved_at,
	created_at,
	expires_at`

func scanHazard(row pgx.Row) (*domain.Hazard, error) {
	var h domain.Hazard
	err := row.Scan(
		&h.ID,
		&h.Type,
		&h.Location.Lat,
		&h.Location.Lng,
		&h.Bearing,
		&h.Severity,
		&h.Status,
		&h.ReportedBy,
		&h.Description,
		&h.ConfirmScore,
		&h.RejectScore,
		&h.ResolveVotes,
		&h.ResolvedBy,
		&h.ResolvedAt,
		&h.CreatedAt,
		&h.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// FindNear returns hazards in the given statuses within radiusMeters of the
// center, using the spatial index. geo_point is geometry(4326); the geography
// cast keeps ST_DWithin in meters.
func (p *HazardRepo) FindNear(ctx context.Context, center domain.Coordinate, radiusMeters float64, statuses []domain.HazardStatus) ([]domain.Hazard, error) {
	const op = "postgres.Hazard.FindNear"

	if !center.Valid() || radiusMeters <= 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if len(statuses) == 0 {
		statuses = []domain.HazardStatus{domain.StatusActive}
	}

	query := `
SELECT ` + hazardColumns + `
FROM hazards
WHERE status = ANY($4)
  AND ST_DWithin(
    geo_point::geography,
    ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
    $3
  )
`

	statusStrs := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrs[i] = string(s)
	}

	rows, err := p.pool.Query(ctx, query, center.Lng, center.Lat, radiusMeters, statusStrs)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	hazards := make([]domain.Hazard, 0, 8)
	for rows.Next() {
		h, err := scanHazard(rows)
		if err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		hazards = append(hazards, *h)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return hazards, nil
}

func (p *HazardRepo) Load(ctx context.Context, id uuid.UUID) (*domain.Hazard, error) {
	const op = "postgres.Hazard.Load"

	query := `SELECT ` + hazardColumns + ` FROM hazards WHERE id = $1`

	h, err := scanHazard(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return h, nil
}

func (p *HazardRepo) Create(ctx context.Context, h *domain.Hazard) error {
	const op = "postgres.Hazard.Create"

	if h == nil || !h.Location.Valid() {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}

	const query = `
INSERT INTO hazards
  (id, type, geo_point, bearing, severity, status, reported_by, description,
   confirm_score, reject_score, resolve_votes, created_at, expires_at)
VALUES
  ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	_, err := p.pool.Exec(ctx, query,
		h.ID,
		h.Type,
		h.Location.Lng,
		h.Location.Lat,
		h.Bearing,
		h.Severity,
		h.Status,
		h.ReportedBy,
		h.Description,
		h.ConfirmScore,
		h.RejectScore,
		h.ResolveVotes,
		h.CreatedAt,
		h.ExpiresAt,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

// Save persists the mutable consensus fields. Location and type never change
// after the report.
func (p *HazardRepo) Save(ctx context.Context, h *domain.Hazard) error {
	const op = "postgres.Hazard.Save"

	if h == nil || h.ID == uuid.Nil {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	const query = `
UPDATE hazards
SET severity      = $2,
    status        = $3,
    confirm_score = $4,
    reject_score  = $5,
    resolve_votes = $6,
    resolved_by   = $7,
    resolved_at   = $8,
    expires_at    = $9
WHERE id = $1
`

	tag, err := p.pool.Exec(ctx, query,
		h.ID,
		h.Severity,
		h.Status,
		h.ConfirmScore,
		h.RejectScore,
		h.ResolveVotes,
		h.ResolvedBy,
		h.ResolvedAt,
		h.ExpiresAt,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}

func (p *HazardRepo) List(ctx context.Context, page, limit int) ([]*domain.Hazard, int64, error) {
	const op = "postgres.Hazard.List"

	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int64
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM hazards`).Scan(&total); err != nil {
		p.logger.Error("db count failed", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}

	query := `
SELECT ` + hazardColumns + `
FROM hazards
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

	rows, err := p.pool.Query(ctx, query, limit, offset)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var hazards []*domain.Hazard
	for rows.Next() {
		h, err := scanHazard(rows)
		if err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, 0, e.WrapError(ctx, op, err)
		}
		hazards = append(hazards, h)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}

	return hazards, total, nil
}

func (p *HazardRepo) ListByStatus(ctx context.Context, statuses []domain.HazardStatus) ([]domain.Hazard, error) {
	const op = "postgres.Hazard.ListByStatus"

	statusStrs := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrs[i] = string(s)
	}

	query := `SELECT ` + hazardColumns + ` FROM hazards WHERE status = ANY($1)`

	rows, err := p.pool.Query(ctx, query, statusStrs)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	hazards := make([]domain.Hazard, 0, 32)
	for rows.Next() {
		h, err := scanHazard(rows)
		if err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		hazards = append(hazards, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	return hazards, nil
}

// SoftDelete flips a hazard straight to expired; admin cleanup, not consensus.
func (p *HazardRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.Hazard.SoftDelete"

	tag, err := p.pool.Exec(ctx, `UPDATE hazards SET status = 'expired' WHERE id = $1`, id)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

// ExpireOverdue moves pending/active hazards past their expiry to expired and
// returns the number swept.
func (p *HazardRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	const op = "postgres.Hazard.ExpireOverdue"

	const query = `
UPDATE hazards
SET status = 'expired'
WHERE status IN ('pending', 'active') AND expires_at < $1
`

	tag, err := p.pool.Exec(ctx, query, now)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}
	return tag.RowsAffected(), nil
}

// HasNearbyOfType backs the duplicate-report gate: an active or pending hazard
// of the same type within the radius means the report is a duplicate.
func (p *HazardRepo) HasNearbyOfType(ctx context.Context, center domain.Coordinate, radiusMeters float64, t domain.HazardType) (bool, error) {
	const op = "postgres.Hazard.HasNearbyOfType"

	const query = `
SELECT EXISTS (
  SELECT 1
  FROM hazards
  WHERE type = $4
    AND status IN ('pending', 'active')
    AND ST_DWithin(
      geo_point::geography,
      ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
      $3
    )
)
`

	var exists bool
	if err := p.pool.QueryRow(ctx, query, center.Lng, center.Lat, radiusMeters, t).Scan(&exists); err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return false, e.WrapError(ctx, op, err)
	}
	return exists, nil
}

package postgres

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/divyanshu-1/RoadX/internal/domain"
	"github.com/divyanshu-1/RoadX/pkg/e"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ResponderRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewResponderRepo(pool *pgxpool.Pool, logger *slog.Logger) *ResponderRepo {
	return &ResponderRepo{pool: pool, logger: logger}
}

// ListByGeohashRange scans responders of one kind whose geohash falls in the
// half-open range [lo, hi). The range comes from geo.PrefixRange, so the scan
// returns exactly the records sharing the query prefix; callers post-filter
// by exact distance.
func (p *ResponderRepo) ListByGeohashRange(ctx context.Context, kind domain.ResponderKind, lo, hi string, activeOnly bool) ([]domain.Responder, error) {
	const op = "postgres.Responder.ListByGeohashRange"

	if lo == "" || hi == "" || lo >= hi {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidArgument)
	}

	const query = `
		SELECT id, kind, name, lat, lng, geohash, status, push_token, phone
		FROM responders
		WHERE kind = $1
		  AND geohash >= $2
		  AND geohash < $3
		  AND ($4 = false OR status = 'active')
		ORDER BY geohash, id
	`

	rows, err := p.pool.Query(ctx, query, string(kind), lo, hi, activeOnly)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	responders := make([]domain.Responder, 0, 8)
	for rows.Next() {
		var (
			r         domain.Responder
			lat, lng  *float64
			pushToken *string
			phone     *string
		)
		if err := rows.Scan(&r.ID, &r.Kind, &r.Name, &lat, &lng, &r.Geohash, &r.Status, &pushToken, &phone); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		if lat != nil && lng != nil {
			r.Location = &domain.Location{Lat: *lat, Lng: *lng}
		}
		r.PushToken = deref(pushToken)
		r.Phone = deref(phone)
		responders = append(responders, r)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return responders, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/divyanshu-1/RoadX/internal/domain"
	"github.com/divyanshu-1/RoadX/pkg/e"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewUserRepo(pool *pgxpool.Pool, logger *slog.Logger) *UserRepo {
	return &UserRepo{pool: pool, logger: logger}
}

func (p *UserRepo) Get(ctx context.Context, id string) (*domain.User, error) {
	const op = "postgres.User.Get"

	const query = `SELECT id, name, phone, push_token, api_token FROM users WHERE id = $1`

	u, err := scanUser(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id))
		return nil, e.WrapError(ctx, op, err)
	}

	return u, nil
}

// GetByToken resolves an API bearer token to its user. ErrNotFound doubles
// as "token not recognised".
func (p *UserRepo) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	const op = "postgres.User.GetByToken"

	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidArgument)
	}

	const query = `SELECT id, name, phone, push_token, api_token FROM users WHERE api_token = $1`

	u, err := scanUser(p.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return u, nil
}

// OwnerHasVehicle reports whether vehicleID belongs to ownerID.
func (p *UserRepo) OwnerHasVehicle(ctx context.Context, ownerID, vehicleID string) (bool, error) {
	const op = "postgres.User.OwnerHasVehicle"

	const query = `SELECT EXISTS (SELECT 1 FROM vehicles WHERE id = $1 AND owner_id = $2)`

	var exists bool
	if err := p.pool.QueryRow(ctx, query, vehicleID, ownerID).Scan(&exists); err != nil {
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err),
			slog.String("owner_id", ownerID), slog.String("vehicle_id", vehicleID))
		return false, e.WrapError(ctx, op, err)
	}

	return exists, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u         domain.User
		phone     *string
		pushToken *string
	)
	if err := row.Scan(&u.ID, &u.Name, &phone, &pushToken, &u.APIToken); err != nil {
		return nil, err
	}
	u.Phone = deref(phone)
	u.PushToken = deref(pushToken)
	return &u, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/divyanshu-1/RoadX/internal/domain"
	"github.com/divyanshu-1/RoadX/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IncidentRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewIncidentRepo(pool *pgxpool.Pool, logger *slog.Logger) *IncidentRepo {
	return &IncidentRepo{pool: pool, logger: logger}
}

const incidentColumns = `
	id, vehicle_id, owner_id, type, lat, lng, geohash, status, owner_contact,
	driver_name, driver_license_number, notes, driver_photo_url, other_details,
	acknowledged_by, responder_name, eta, created_at, acknowledged_at, resolved_at
`

func (p *IncidentRepo) Create(ctx context.Context, incident *domain.Incident) error {
	const op = "postgres.Incident.Create"

	const query = `
		INSERT INTO incidents (` + incidentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	if incident.ID == uuid.Nil {
		incident.ID = uuid.New()
	}
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = time.Now().UTC()
	}
	if incident.Status == "" {
		incident.Status = domain.IncidentReported
	}

	_, err := p.pool.Exec(ctx, query,
		incident.ID,
		incident.VehicleID,
		incident.OwnerID,
		incident.Type,
		incident.Lat,
		incident.Lng,
		incident.Geohash,
		incident.Status,
		incident.OwnerContact,
		nullable(incident.DriverName),
		nullable(incident.DriverLicenseNumber),
		nullable(incident.Notes),
		nullable(incident.DriverPhotoURL),
		nullable(incident.OtherDetails),
		nullable(incident.AcknowledgedBy),
		nullable(incident.ResponderName),
		nullable(incident.ETA),
		incident.CreatedAt,
		incident.AcknowledgedAt,
		incident.ResolvedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (p *IncidentRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	const op = "postgres.Incident.Get"

	const query = `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`

	inc, err := scanIncident(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}

	return inc, nil
}

func (p *IncidentRepo) Acknowledge(ctx context.Context, id uuid.UUID, ack domain.Acknowledgement) error {
	const op = "postgres.Incident.Acknowledge"

	const query = `
		UPDATE incidents
		SET status          = $2,
			acknowledged_by = $3,
			responder_name  = $4,
			eta             = $5,
			acknowledged_at = $6
		WHERE id = $1
	`

	cmd, err := p.pool.Exec(ctx, query,
		id,
		domain.IncidentAcknowledged,
		ack.ResponderID,
		nullable(ack.ResponderName),
		nullable(ack.ETA),
		ack.At,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}

func (p *IncidentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.IncidentStatus, resolvedAt *time.Time) error {
	const op = "postgres.Incident.UpdateStatus"

	const query = `
		UPDATE incidents
		SET status      = $2,
			resolved_at = COALESCE($3, resolved_at)
		WHERE id = $1
	`

	cmd, err := p.pool.Exec(ctx, query, id, status, resolvedAt)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}

func (p *IncidentRepo) List(ctx context.Context, status domain.IncidentStatus, page, limit int) ([]*domain.Incident, int64, error) {
	const op = "postgres.Incident.List"

	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	const countQuery = `SELECT COUNT(*) FROM incidents WHERE ($1 = '' OR status = $1)`

	var total int64
	if err := p.pool.QueryRow(ctx, countQuery, string(status)).Scan(&total); err != nil {
		p.logger.Error("db count failed", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}

	const listQuery = `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.pool.Query(ctx, listQuery, string(status), limit, offset)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var incidents []*domain.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, 0, e.WrapError(ctx, op, err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}

	return incidents, total, nil
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var (
		inc                 domain.Incident
		driverName          *string
		driverLicenseNumber *string
		notes               *string
		driverPhotoURL      *string
		otherDetails        *string
		acknowledgedBy      *string
		responderName       *string
		eta                 *string
	)
	err := row.Scan(
		&inc.ID,
		&inc.VehicleID,
		&inc.OwnerID,
		&inc.Type,
		&inc.Lat,
		&inc.Lng,
		&inc.Geohash,
		&inc.Status,
		&inc.OwnerContact,
		&driverName,
		&driverLicenseNumber,
		&notes,
		&driverPhotoURL,
		&otherDetails,
		&acknowledgedBy,
		&responderName,
		&eta,
		&inc.CreatedAt,
		&inc.AcknowledgedAt,
		&inc.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	inc.DriverName = deref(driverName)
	inc.DriverLicenseNumber = deref(driverLicenseNumber)
	inc.Notes = deref(notes)
	inc.DriverPhotoURL = deref(driverPhotoURL)
	inc.OtherDetails = deref(otherDetails)
	inc.AcknowledgedBy = deref(acknowledgedBy)
	inc.ResponderName = deref(responderName)
	inc.ETA = deref(eta)
	return &inc, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

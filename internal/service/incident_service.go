package service

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/divyanshu-1/RoadX/internal/config"
	"github.com/divyanshu-1/RoadX/internal/domain"
	"github.com/divyanshu-1/RoadX/internal/geo"
	"github.com/divyanshu-1/RoadX/pkg/e"

	"github.com/google/uuid"
)

type incidentService struct {
	repo      IncidentRepository
	users     UserRepository
	proximity ProximityService
	notifier  Notifier
	ownerPush PushSender
	cfg       config.SearchConfig
	logger    *slog.Logger
}

func NewIncidentService(
	repo IncidentRepository,
	users UserRepository,
	proximity ProximityService,
	notifier Notifier,
	ownerPush PushSender,
	cfg config.SearchConfig,
	logger *slog.Logger,
) IncidentService {
	return &incidentService{
		repo:      repo,
		users:     users,
		proximity: proximity,
		notifier:  notifier,
		ownerPush: ownerPush,
		cfg:       cfg,
		logger:    logger,
	}
}

// Report validates, persists the incident, then runs the best-effort
// proximity search and fanout. Once the incident row is written, no
// notification failure can fail the call.
func (s *incidentService) Report(ctx context.Context, ownerID string, req domain.ReportIncidentRequest) (domain.ReportIncidentResponse, error) {
	const op = "service.Incident.Report"

	if ownerID == "" {
		return domain.ReportIncidentResponse{}, fmt.Errorf("%s: %w", op, e.ErrUnauthenticated)
	}
	if req.VehicleID == "" || req.Type == "" || req.OwnerContact == "" {
		return domain.ReportIncidentResponse{}, fmt.Errorf("%s: missing required fields: %w", op, e.ErrInvalidArgument)
	}

	owns, err := s.users.OwnerHasVehicle(ctx, ownerID, req.VehicleID)
	if err != nil {
		return domain.ReportIncidentResponse{}, err
	}
	if !owns {
		return domain.ReportIncidentResponse{}, fmt.Errorf("%s: vehicle not found or not owned by caller: %w", op, e.ErrNotFound)
	}

	lat, lng := s.cfg.DefaultLat, s.cfg.DefaultLng
	geohash := domain.GeohashPlaceholder
	if req.Location != nil {
		lat, lng = req.Location.Lat, req.Location.Lng
		geohash, err = geo.Encode(lat, lng, s.cfg.StorePrecision)
		if err != nil {
			return domain.ReportIncidentResponse{}, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
		}
	}

	inc := &domain.Incident{
		ID:                  uuid.New(),
		VehicleID:           req.VehicleID,
		OwnerID:             ownerID,
		Type:                req.Type,
		Lat:                 lat,
		Lng:                 lng,
		Geohash:             geohash,
		Status:              domain.IncidentReported,
		OwnerContact:        req.OwnerContact,
		DriverName:          req.DriverName,
		DriverLicenseNumber: req.DriverLicenseNumber,
		Notes:               req.Notes,
		DriverPhotoURL:      req.DriverPhotoURL,
		OtherDetails:        req.OtherDetails,
		CreatedAt:           time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, inc); err != nil {
		return domain.ReportIncidentResponse{}, err
	}

	l := s.logger.With(slog.String("incident_id", inc.ID.String()))
	l.Info("incident persisted", slog.String("type", inc.Type), slog.String("vehicle_id", inc.VehicleID))

	// Secondary effects from here on: logged, counted, never propagated.
	nearby, err := s.proximity.FindNearby(ctx, lat, lng, s.cfg.RadiusKM, []domain.ResponderKind{domain.ResponderStation, domain.ResponderPatrol})
	if err != nil {
		l.Error("proximity search failed, proceeding without responders", slog.Any("error", err))
		nearby = nil
	}

	notified := 0
	if len(nearby) > 0 {
		result, err := s.notifier.Notify(ctx, nearby, inc)
		if err != nil {
			l.Error("fanout aborted", slog.Any("error", err))
		} else {
			notified = result.SucceededCount()
		}
	}

	l.Info("incident reported", slog.Int("nearby", len(nearby)), slog.Int("notified", notified))

	return domain.ReportIncidentResponse{
		IncidentID:  inc.ID.String(),
		NearbyCount: len(nearby),
		Notified:    notified,
	}, nil
}

func (s *incidentService) Acknowledge(ctx context.Context, incidentID uuid.UUID, req domain.AcknowledgeIncidentRequest) error {
	const op = "service.Incident.Acknowledge"

	if req.ResponderID == "" {
		return fmt.Errorf("%s: missing responder_id: %w", op, e.ErrInvalidArgument)
	}

	inc, err := s.repo.Get(ctx, incidentID)
	if err != nil {
		return err
	}

	ack := domain.Acknowledgement{
		ResponderID:   req.ResponderID,
		ResponderName: req.ResponderName,
		ETA:           req.ETA,
		At:            time.Now().UTC(),
	}
	if err := s.repo.Acknowledge(ctx, incidentID, ack); err != nil {
		return err
	}

	s.notifyOwner(ctx, inc, req.ResponderName)

	return nil
}

// notifyOwner sends a single best-effort push to the incident owner; any
// failure is logged and swallowed.
func (s *incidentService) notifyOwner(ctx context.Context, inc *domain.Incident, responderName string) {
	owner, err := s.users.Get(ctx, inc.OwnerID)
	if err != nil {
		s.logger.Warn("owner lookup failed, skipping acknowledgement push",
			slog.String("incident_id", inc.ID.String()),
			slog.String("owner_id", inc.OwnerID),
			slog.Any("error", err),
		)
		return
	}
	if owner.PushToken == "" {
		return
	}

	if responderName == "" {
		responderName = "Authority"
	}
	msg := domain.PushMessage{
		Token: owner.PushToken,
		Title: "Incident Acknowledged",
		Body:  fmt.Sprintf("%s is responding to your incident", responderName),
		Data: map[string]string{
			"type":       "incident_acknowledged",
			"incidentId": inc.ID.String(),
		},
	}
	if err := s.ownerPush.Send(ctx, msg); err != nil {
		s.logger.Warn("owner acknowledgement push failed",
			slog.String("incident_id", inc.ID.String()),
			slog.Any("error", err),
		)
	}
}

func (s *incidentService) UpdateStatus(ctx context.Context, incidentID uuid.UUID, status domain.IncidentStatus) error {
	const op = "service.Incident.UpdateStatus"

	if !status.ValidTransitionTarget() {
		return fmt.Errorf("%s: status %q: %w", op, status, e.ErrInvalidArgument)
	}

	var resolvedAt *time.Time
	if status == domain.IncidentResolved {
		now := time.Now().UTC()
		resolvedAt = &now
	}

	return s.repo.UpdateStatus(ctx, incidentID, status, resolvedAt)
}

func (s *incidentService) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return s.repo.Get(ctx, id)
}

func (s *incidentService) List(ctx context.Context, status domain.IncidentStatus, page, limit int) ([]*domain.Incident, int64, error) {
	return s.repo.List(ctx, status, page, limit)
}

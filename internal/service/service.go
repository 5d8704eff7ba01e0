package service

import (
	"context"
	"time"

	"github.com/divyanshu-1/RoadX/internal/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go

// IncidentService is the incident lifecycle: create with best-effort
// responder fanout, acknowledge with best-effort owner notification, and
// forward status transitions.
type IncidentService interface {
	Report(ctx context.Context, ownerID string, req domain.ReportIncidentRequest) (domain.ReportIncidentResponse, error)
	Acknowledge(ctx context.Context, incidentID uuid.UUID, req domain.AcknowledgeIncidentRequest) error
	UpdateStatus(ctx context.Context, incidentID uuid.UUID, status domain.IncidentStatus) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	List(ctx context.Context, status domain.IncidentStatus, page, limit int) ([]*domain.Incident, int64, error)
}

// ProximityService finds responders within radiusKm of a point, ranked by
// exact great-circle distance ascending. An empty result is not an error.
type ProximityService interface {
	FindNearby(ctx context.Context, lat, lng, radiusKm float64, kinds []domain.ResponderKind) ([]domain.NearbyResponder, error)
}

type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	Acknowledge(ctx context.Context, id uuid.UUID, ack domain.Acknowledgement) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.IncidentStatus, resolvedAt *time.Time) error
	List(ctx context.Context, status domain.IncidentStatus, page, limit int) ([]*domain.Incident, int64, error)
}

type UserRepository interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	OwnerHasVehicle(ctx context.Context, ownerID, vehicleID string) (bool, error)
}

type ResponderStore interface {
	ListByGeohashRange(ctx context.Context, kind domain.ResponderKind, lo, hi string, activeOnly bool) ([]domain.Responder, error)
}

// ResponderCache sits in front of ResponderStore range scans; cache failures
// fall through to the store.
type ResponderCache interface {
	Get(ctx context.Context, kind domain.ResponderKind, prefix string) ([]domain.Responder, bool, error)
	Set(ctx context.Context, kind domain.ResponderKind, prefix string, responders []domain.Responder) error
}

type Notifier interface {
	Notify(ctx context.Context, responders []domain.NearbyResponder, inc *domain.Incident) (domain.FanoutResult, error)
}

type PushSender interface {
	Send(ctx context.Context, msg domain.PushMessage) error
}

type Service struct {
	IncidentService  IncidentService
	ProximityService ProximityService
}

func NewService(incidentService IncidentService, proximityService ProximityService) *Service {
	return &Service{
		IncidentService:  incidentService,
		ProximityService: proximityService,
	}
}

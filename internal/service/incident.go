package service

import (
	"context"

	"github.com/divyanshu-1/RoadX/internal/domain"

	"github.com/google/uuid"
)

func (s *Service) Report(ctx context.Context, ownerID string, req domain.ReportIncidentRequest) (domain.ReportIncidentResponse, error) {
	return s.IncidentService.Report(ctx, ownerID, req)
}

func (s *Service) Acknowledge(ctx context.Context, incidentID uuid.UUID, req domain.AcknowledgeIncidentRequest) error {
	return s.IncidentService.Acknowledge(ctx, incidentID, req)
}

func (s *Service) UpdateStatus(ctx context.Context, incidentID uuid.UUID, status domain.IncidentStatus) error {
	return s.IncidentService.UpdateStatus(ctx, incidentID, status)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return s.IncidentService.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, status domain.IncidentStatus, page, limit int) ([]*domain.Incident, int64, error) {
	return s.IncidentService.List(ctx, status, page, limit)
}

func (s *Service) FindNearby(ctx context.Context, lat, lng, radiusKm float64, kinds []domain.ResponderKind) ([]domain.NearbyResponder, error) {
	return s.ProximityService.FindNearby(ctx, lat, lng, radiusKm, kinds)
}

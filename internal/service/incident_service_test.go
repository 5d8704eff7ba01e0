package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"github.com/divyanshu-1/RoadX/internal/domain"
	"github.com/divyanshu-1/RoadX/internal/service"
	mock_service "github.com/divyanshu-1/RoadX/internal/service/mocks"
	"github.com/divyanshu-1/RoadX/pkg/e"
)

type incidentFixture struct {
	repo      *mock_service.MockIncidentRepository
	users     *mock_service.MockUserRepository
	proximity *mock_service.MockProximityService
	notifier  *mock_service.MockNotifier
	ownerPush *mock_service.MockPushSender
	svc       service.IncidentService
}

func newIncidentFixture(t *testing.T) *incidentFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &incidentFixture{
		repo:      mock_service.NewMockIncidentRepository(ctrl),
		users:     mock_service.NewMockUserRepository(ctrl),
		proximity: mock_service.NewMockProximityService(ctrl),
		notifier:  mock_service.NewMockNotifier(ctrl),
		ownerPush: mock_service.NewMockPushSender(ctrl),
	}
	f.svc = service.NewIncidentService(f.repo, f.users, f.proximity, f.notifier, f.ownerPush, testSearchConfig(), newTestLogger())
	return f
}

func reportRequest() domain.ReportIncidentRequest {
	return domain.ReportIncidentRequest{
		VehicleID:    "veh-1",
		Type:         "accident",
		OwnerContact: "+919900112233",
		Location:     &domain.Location{Lat: 19.0760, Lng: 72.8777},
	}
}

func TestReport_HappyPath(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)

	var created *domain.Incident
	f.users.EXPECT().OwnerHasVehicle(gomock.Any(), "owner-1", "veh-1").Return(true, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *domain.Incident) error {
			created = inc
			return nil
		})

	nearby := []domain.NearbyResponder{
		{Responder: domain.Responder{ID: "p1", Kind: domain.ResponderPatrol, PushToken: "tok"}, DistanceKM: 0.5},
		{Responder: domain.Responder{ID: "s1", Kind: domain.ResponderStation, Phone: "+911"}, DistanceKM: 2.1},
	}
	f.proximity.EXPECT().
		FindNearby(gomock.Any(), 19.0760, 72.8777, 5.0, []domain.ResponderKind{domain.ResponderStation, domain.ResponderPatrol}).
		Return(nearby, nil)
	f.notifier.EXPECT().
		Notify(gomock.Any(), nearby, gomock.Any()).
		Return(domain.FanoutResult{Succeeded: []string{"p1", "s1"}}, nil)

	resp, err := f.svc.Report(context.Background(), "owner-1", reportRequest())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.NearbyCount != 2 || resp.Notified != 2 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
	if created == nil {
		t.Fatal("incident not persisted")
	}
	if resp.IncidentID != created.ID.String() {
		t.Fatalf("response id %s does not match persisted %s", resp.IncidentID, created.ID)
	}
	if created.Status != domain.IncidentReported {
		t.Fatalf("expected status reported, got %s", created.Status)
	}
	if created.Geohash == domain.GeohashPlaceholder || len(created.Geohash) != 9 {
		t.Fatalf("expected 9-char geohash, got %q", created.Geohash)
	}
}

func TestReport_MissingLocationUsesDefaults(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)
	cfg := testSearchConfig()

	var created *domain.Incident
	f.users.EXPECT().OwnerHasVehicle(gomock.Any(), "owner-1", "veh-1").Return(true, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *domain.Incident) error {
			created = inc
			return nil
		})
	f.proximity.EXPECT().
		FindNearby(gomock.Any(), cfg.DefaultLat, cfg.DefaultLng, cfg.RadiusKM, gomock.Any()).
		Return(nil, nil)

	req := reportRequest()
	req.Location = nil

	resp, err := f.svc.Report(context.Background(), "owner-1", req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.NearbyCount != 0 || resp.Notified != 0 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
	if created.Geohash != domain.GeohashPlaceholder {
		t.Fatalf("expected placeholder geohash, got %q", created.Geohash)
	}
	if created.Lat != cfg.DefaultLat || created.Lng != cfg.DefaultLng {
		t.Fatalf("expected default coordinates, got (%v, %v)", created.Lat, created.Lng)
	}
}

func TestReport_Unauthenticated(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)

	_, err := f.svc.Report(context.Background(), "", reportRequest())
	if !errors.Is(err, e.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestReport_MissingFields(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)

	req := reportRequest()
	req.OwnerContact = ""

	_, err := f.svc.Report(context.Background(), "owner-1", req)
	if !errors.Is(err, e.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestReport_VehicleNotOwned(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)
	f.users.EXPECT().OwnerHasVehicle(gomock.Any(), "owner-1", "veh-1").Return(false, nil)

	_, err := f.svc.Report(context.Background(), "owner-1", reportRequest())
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReport_InvalidCoordinates(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)
	f.users.EXPECT().OwnerHasVehicle(gomock.Any(), "owner-1", "veh-1").Return(true, nil)

	req := reportRequest()
	req.Location = &domain.Location{Lat: 120, Lng: 72.8777}

	_, err := f.svc.Report(context.Background(), "owner-1", req)
	if !errors.Is(err, e.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}

// A failed proximity search or fanout must never fail the report once the
// incident row is written.
func TestReport_SearchFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)

	f.users.EXPECT().OwnerHasVehicle(gomock.Any(), "owner-1", "veh-1").Return(true, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.proximity.EXPECT().
		FindNearby(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("index unavailable"))

	resp, err := f.svc.Report(context.Background(), "owner-1", reportRequest())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.NearbyCount != 0 || resp.Notified != 0 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
	if resp.IncidentID == "" {
		t.Fatal("expected incident id in response")
	}
}

func TestReport_FanoutFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)

	f.users.EXPECT().OwnerHasVehicle(gomock.Any(), "owner-1", "veh-1").Return(true, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	nearby := []domain.NearbyResponder{
		{Responder: domain.Responder{ID: "p1", PushToken: "tok"}, DistanceKM: 0.5},
	}
	f.proximity.EXPECT().
		FindNearby(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nearby, nil)
	f.notifier.EXPECT().
		Notify(gomock.Any(), nearby, gomock.Any()).
		Return(domain.FanoutResult{}, errors.New("dispatch rejected"))

	resp, err := f.svc.Report(context.Background(), "owner-1", reportRequest())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.NearbyCount != 1 || resp.Notified != 0 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
}

func TestReport_CreateFailurePropagates(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)

	wantErr := errors.New("insert failed")
	f.users.EXPECT().OwnerHasVehicle(gomock.Any(), "owner-1", "veh-1").Return(true, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(wantErr)

	_, err := f.svc.Report(context.Background(), "owner-1", reportRequest())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected create error, got %v", err)
	}
}

func storedIncident(id uuid.UUID) *domain.Incident {
	return &domain.Incident{
		ID:           id,
		VehicleID:    "veh-1",
		OwnerID:      "owner-1",
		Type:         "accident",
		Lat:          19.0760,
		Lng:          72.8777,
		Geohash:      "te7ud6rvd",
		Status:       domain.IncidentReported,
		OwnerContact: "+919900112233",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestAcknowledge_SendsOwnerPush(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)
	id := uuid.New()

	f.repo.EXPECT().Get(gomock.Any(), id).Return(storedIncident(id), nil)

	var ack domain.Acknowledgement
	f.repo.EXPECT().Acknowledge(gomock.Any(), id, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, a domain.Acknowledgement) error {
			ack = a
			return nil
		})
	f.users.EXPECT().Get(gomock.Any(), "owner-1").
		Return(&domain.User{ID: "owner-1", Name: "Owner", PushToken: "owner-token"}, nil)

	var sent domain.PushMessage
	f.ownerPush.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg domain.PushMessage) error {
			sent = msg
			return nil
		})

	req := domain.AcknowledgeIncidentRequest{ResponderID: "p1", ResponderName: "Patrol 7", ETA: "5 min"}
	if err := f.svc.Acknowledge(context.Background(), id, req); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if ack.ResponderID != "p1" || ack.ResponderName != "Patrol 7" || ack.ETA != "5 min" {
		t.Fatalf("unexpected acknowledgement: %+v", ack)
	}
	if ack.At.IsZero() {
		t.Fatal("acknowledgement time not stamped")
	}
	if sent.Token != "owner-token" || sent.Title != "Incident Acknowledged" {
		t.Fatalf("unexpected push: %+v", sent)
	}
	if sent.Body != "Patrol 7 is responding to your incident" {
		t.Fatalf("unexpected push body: %q", sent.Body)
	}
	if sent.Data["type"] != "incident_acknowledged" || sent.Data["incidentId"] != id.String() {
		t.Fatalf("unexpected push data: %+v", sent.Data)
	}
}

func TestAcknowledge_DefaultsResponderName(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)
	id := uuid.New()

	f.repo.EXPECT().Get(gomock.Any(), id).Return(storedIncident(id), nil)
	f.repo.EXPECT().Acknowledge(gomock.Any(), id, gomock.Any()).Return(nil)
	f.users.EXPECT().Get(gomock.Any(), "owner-1").
		Return(&domain.User{ID: "owner-1", PushToken: "owner-token"}, nil)

	var sent domain.PushMessage
	f.ownerPush.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg domain.PushMessage) error {
			sent = msg
			return nil
		})

	req := domain.AcknowledgeIncidentRequest{ResponderID: "p1"}
	if err := f.svc.Acknowledge(context.Background(), id, req); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sent.Body != "Authority is responding to your incident" {
		t.Fatalf("unexpected push body: %q", sent.Body)
	}
}

func TestAcknowledge_MissingResponderID(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)

	err := f.svc.Acknowledge(context.Background(), uuid.New(), domain.AcknowledgeIncidentRequest{})
	if !errors.Is(err, e.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAcknowledge_IncidentNotFound(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)
	id := uuid.New()

	f.repo.EXPECT().Get(gomock.Any(), id).Return(nil, e.ErrNotFound)

	err := f.svc.Acknowledge(context.Background(), id, domain.AcknowledgeIncidentRequest{ResponderID: "p1"})
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAcknowledge_OwnerPushFailureSwallowed(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)
	id := uuid.New()

	f.repo.EXPECT().Get(gomock.Any(), id).Return(storedIncident(id), nil)
	f.repo.EXPECT().Acknowledge(gomock.Any(), id, gomock.Any()).Return(nil)
	f.users.EXPECT().Get(gomock.Any(), "owner-1").
		Return(&domain.User{ID: "owner-1", PushToken: "owner-token"}, nil)
	f.ownerPush.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("push gateway down"))

	err := f.svc.Acknowledge(context.Background(), id, domain.AcknowledgeIncidentRequest{ResponderID: "p1"})
	if err != nil {
		t.Fatalf("push failure must not fail acknowledgement: %v", err)
	}
}

func TestAcknowledge_OwnerWithoutTokenSkipsPush(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)
	id := uuid.New()

	f.repo.EXPECT().Get(gomock.Any(), id).Return(storedIncident(id), nil)
	f.repo.EXPECT().Acknowledge(gomock.Any(), id, gomock.Any()).Return(nil)
	f.users.EXPECT().Get(gomock.Any(), "owner-1").
		Return(&domain.User{ID: "owner-1"}, nil)
	// no Send expected

	err := f.svc.Acknowledge(context.Background(), id, domain.AcknowledgeIncidentRequest{ResponderID: "p1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestUpdateStatus_Resolved(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)
	id := uuid.New()

	var gotResolvedAt *time.Time
	f.repo.EXPECT().UpdateStatus(gomock.Any(), id, domain.IncidentResolved, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, _ domain.IncidentStatus, resolvedAt *time.Time) error {
			gotResolvedAt = resolvedAt
			return nil
		})

	if err := f.svc.UpdateStatus(context.Background(), id, domain.IncidentResolved); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if gotResolvedAt == nil || gotResolvedAt.IsZero() {
		t.Fatal("expected resolved_at to be stamped")
	}
}

func TestUpdateStatus_InProgressLeavesResolvedAt(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)
	id := uuid.New()

	f.repo.EXPECT().UpdateStatus(gomock.Any(), id, domain.IncidentInProgress, gomock.Nil()).Return(nil)

	if err := f.svc.UpdateStatus(context.Background(), id, domain.IncidentInProgress); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	f := newIncidentFixture(t)

	err := f.svc.UpdateStatus(context.Background(), uuid.New(), domain.IncidentStatus("cancelled"))
	if !errors.Is(err, e.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

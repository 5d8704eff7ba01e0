package incidents

import (
	"context"
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/divyanshu-1/RoadX/internal/domain"
	"github.com/divyanshu-1/RoadX/internal/middleware"
	"github.com/divyanshu-1/RoadX/pkg/validator"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type IncidentService interface {
	Report(ctx context.Context, ownerID string, req domain.ReportIncidentRequest) (domain.ReportIncidentResponse, error)
	Acknowledge(ctx context.Context, incidentID uuid.UUID, req domain.AcknowledgeIncidentRequest) error
	UpdateStatus(ctx context.Context, incidentID uuid.UUID, status domain.IncidentStatus) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	List(ctx context.Context, status domain.IncidentStatus, page, limit int) ([]*domain.Incident, int64, error)
}

type Handler struct {
	logger    *slog.Logger
	Incidents IncidentService
}

func NewHandler(logger *slog.Logger, incidents IncidentService) *Handler {
	return &Handler{
		logger:    logger,
		Incidents: incidents,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("Report", slog.String("remote", r.RemoteAddr))

	ownerID := middleware.CallerID(r.Context())
	if ownerID == "" {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var req domain.ReportIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		l.Warn("validation failed", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	l.Info("reporting incident",
		slog.String("vehicle_id", req.VehicleID),
		slog.String("type", req.Type),
		slog.Bool("has_location", req.Location != nil),
	)

	resp, err := h.Incidents.Report(r.Context(), ownerID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("incident reported",
		slog.String("incident_id", resp.IncidentID),
		slog.Int("nearby", resp.NearbyCount),
		slog.Int("notified", resp.Notified),
	)
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	id, ok := h.incidentID(w, r)
	if !ok {
		return
	}

	var req domain.AcknowledgeIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		l.Warn("validation failed", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.Incidents.Acknowledge(r.Context(), id, req); err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("incident acknowledged", slog.String("incident_id", id.String()), slog.String("responder_id", req.ResponderID))
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	id, ok := h.incidentID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateIncidentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		l.Warn("validation failed", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.Incidents.UpdateStatus(r.Context(), id, req.Status); err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("incident status updated", slog.String("incident_id", id.String()), slog.String("status", string(req.Status)))
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.incidentID(w, r)
	if !ok {
		return
	}

	inc, err := h.Incidents.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, inc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	status := domain.IncidentStatus(r.URL.Query().Get("status"))
	if status != "" && status != domain.IncidentReported && !status.ValidTransitionTarget() {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
		return
	}

	page := parseInt(r.URL.Query().Get("page"), 1)
	limit := parseInt(r.URL.Query().Get("limit"), 20)
	if limit > 100 {
		limit = 100
	}

	incidents, total, err := h.Incidents.List(r.Context(), status, page, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Debug("incidents listed", slog.Int("count", len(incidents)), slog.Int64("total", total))
	h.writeJSON(w, http.StatusOK, map[string]any{
		"incidents": incidents,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

func (h *Handler) incidentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.log(r).Warn("invalid incident id", slog.String("id", idStr), slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid incident id"})
		return uuid.Nil, false
	}
	return id, true
}

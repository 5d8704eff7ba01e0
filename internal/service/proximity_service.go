package service

import (
	"context"
	"fmt"
	"sort"

	"log/slog"

	"github.com/divyanshu-1/RoadX/internal/config"
	"github.com/divyanshu-1/RoadX/internal/domain"
	"github.com/divyanshu-1/RoadX/internal/geo"
	"github.com/divyanshu-1/RoadX/pkg/e"
)

type proximityService struct {
	store  ResponderStore
	cache  ResponderCache // nil disables caching
	cfg    config.SearchConfig
	logger *slog.Logger
}

func NewProximityService(store ResponderStore, cache ResponderCache, cfg config.SearchConfig, logger *slog.Logger) ProximityService {
	return &proximityService{
		store:  store,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

// FindNearby bounds the candidate set with one geohash range scan per kind
// at the coarse outer prefix, then post-filters by exact Haversine distance.
// The outer prefix is an approximation of radius containment: neighbours
// just across a cell boundary can be missed.
func (s *proximityService) FindNearby(ctx context.Context, lat, lng, radiusKm float64, kinds []domain.ResponderKind) ([]domain.NearbyResponder, error) {
	const op = "service.Proximity.FindNearby"

	if radiusKm <= 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidArgument)
	}

	key, err := geo.Encode(lat, lng, s.cfg.QueryPrecision)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}

	outer := s.cfg.OuterPrefixLen
	if outer > len(key) {
		outer = len(key)
	}
	lo, hi, err := geo.PrefixRange(key, outer)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	nearby := make([]domain.NearbyResponder, 0, 8)
	for _, kind := range kinds {
		candidates, err := s.candidates(ctx, kind, key[:outer], lo, hi)
		if err != nil {
			return nil, err
		}

		for _, r := range candidates {
			if r.Location == nil {
				continue
			}
			dist := geo.Distance(lat, lng, r.Location.Lat, r.Location.Lng)
			if dist > radiusKm {
				continue
			}
			nearby = append(nearby, domain.NearbyResponder{Responder: r, DistanceKM: dist})
		}
	}

	// Stable keeps query order (kind, then scan order) as the tie-break.
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKM < nearby[j].DistanceKM
	})

	s.logger.Debug("proximity search done",
		slog.Float64("lat", lat),
		slog.Float64("lng", lng),
		slog.Float64("radius_km", radiusKm),
		slog.Int("nearby", len(nearby)),
	)

	return nearby, nil
}

func (s *proximityService) candidates(ctx context.Context, kind domain.ResponderKind, prefix, lo, hi string) ([]domain.Responder, error) {
	if s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, kind, prefix)
		if err != nil {
			s.logger.Warn("responder cache get failed", slog.String("kind", string(kind)), slog.Any("error", err))
		} else if hit {
			return cached, nil
		}
	}

	activeOnly := kind == domain.ResponderPatrol
	responders, err := s.store.ListByGeohashRange(ctx, kind, lo, hi, activeOnly)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, kind, prefix, responders); err != nil {
			s.logger.Warn("responder cache set failed", slog.String("kind", string(kind)), slog.Any("error", err))
		}
	}

	return responders, nil
}

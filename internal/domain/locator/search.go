package locator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/yanqian/cyclecare/pkg/errors"
)

// PlacesProvider talks to the upstream places API.
type PlacesProvider interface {
	Nearby(ctx context.Context, q Query) ([]Place, error)
	Ping(ctx context.Context) error
}

// Cache stores nearby-search responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]Place, bool, error)
	Set(ctx context.Context, key string, places []Place, ttl time.Duration) error
}

// Searcher resolves nearby queries for both the proxy endpoint and locator sessions.
type Searcher interface {
	Nearby(ctx context.Context, q Query) ([]Place, error)
	Health(ctx context.Context) error
}

type searcher struct {
	cfg      Config
	provider PlacesProvider
	cache    Cache
	logger   *slog.Logger
}

// NewSearcher wires the nearby-search pipeline. cache may be nil.
func NewSearcher(cfg Config, provider PlacesProvider, cache Cache, logger *slog.Logger) Searcher {
	return &searcher{
		cfg:      cfg.withDefaults(),
		provider: provider,
		cache:    cache,
		logger:   logger.With("component", "locator.search"),
	}
}

func (s *searcher) Nearby(ctx context.Context, q Query) ([]Place, error) {
	q, err := s.normalize(q)
	if err != nil {
		return nil, err
	}

	key := CacheKey(q)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("nearby cache read failed", "key", key, "error", err)
		} else if ok {
			s.logger.Debug("nearby cache hit", "key", key, "count", len(cached))
			return cached, nil
		}
	}

	places, err := s.provider.Nearby(ctx, q)
	if err != nil {
		if apperrors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeUpstreamError, "nearby search failed", err)
	}
	if len(places) > MaxResults {
		places = places[:MaxResults]
	}
	for i := range places {
		places[i] = withPlaceDefaults(places[i], q.Type)
	}
	s.logger.Info("nearby search completed", "type", q.Type, "radius", q.Radius, "count", len(places))

	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if err := s.cache.Set(ctx, key, places, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("nearby cache write failed", "key", key, "error", err)
		}
	}
	return places, nil
}

func (s *searcher) Health(ctx context.Context) error {
	if err := s.provider.Ping(ctx); err != nil {
		return apperrors.Wrap(apperrors.CodeUpstreamError, "places provider unavailable", err)
	}
	return nil
}

func (s *searcher) normalize(q Query) (Query, error) {
	if !q.Location.Valid() {
		return q, apperrors.Wrap(apperrors.CodeInvalidInput, "latitude and longitude are out of range", nil)
	}
	if q.Type == "" {
		q.Type = s.cfg.DefaultType
	}
	if _, ok := ParseFacilityType(string(q.Type)); !ok {
		q.Type = FacilityHospital
	}
	if q.Radius <= 0 {
		q.Radius = s.cfg.DefaultRadius
	}
	if q.Radius > s.cfg.MaxRadius {
		return q, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("radius must not exceed %d meters", s.cfg.MaxRadius), nil)
	}
	return q, nil
}

// CacheKey buckets coordinates to roughly 100m so neighbouring requests share entries.
func CacheKey(q Query) string {
	return fmt.Sprintf("%.3f:%.3f:%s:%d", q.Location.Lat, q.Location.Lng, q.Type, q.Radius)
}

func withPlaceDefaults(p Place, t FacilityType) Place {
	if p.Address == "" {
		p.Address = AddressMissing
	}
	if p.Phone == "" {
		p.Phone = PhoneMissing
	}
	if p.Type == "" {
		p.Type = t
	}
	if p.OpeningHours == nil {
		p.OpeningHours = []string{}
	}
	return p
}

package locator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/cyclecare/pkg/errors"
	"github.com/yanqian/cyclecare/pkg/util"
)

// Service manages locator sessions.
type Service interface {
	Open(ctx context.Context, req OpenRequest) (View, error)
	Get(ctx context.Context, sessionID string) (View, error)
	Dispatch(ctx context.Context, sessionID string, cmd Command) (View, error)
}

// OpenRequest seeds a new session.
type OpenRequest struct {
	FacilityType string `json:"facilityType"`
	Radius       int    `json:"radius"`
}

// Command kinds accepted from clients.
const (
	CommandLocationResolved = "location_resolved"
	CommandLocationFailed   = "location_failed"
	CommandFacilityType     = "facility_type_changed"
	CommandRadius           = "radius_changed"
	CommandUseMyLocation    = "use_my_location"
	CommandRetry            = "retry"
	CommandSelectPlace      = "select_place"
	CommandCloseModal       = "close_modal"
)

// Command is the wire form of a client event.
type Command struct {
	Type         string   `json:"type"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	FacilityType string   `json:"facilityType,omitempty"`
	Radius       int      `json:"radius,omitempty"`
	PlaceID      string   `json:"placeId,omitempty"`
}

type service struct {
	cfg      Config
	searcher Searcher
	logger   *slog.Logger
	clock    util.Clock
	newID    func() string

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService wires up the locator domain.
func NewService(cfg Config, searcher Searcher, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg.withDefaults(),
		searcher: searcher,
		logger:   logger.With("component", "locator.service"),
		clock:    util.NowUTC,
		newID:    uuid.NewString,
		sessions: make(map[string]*Session),
	}
}

func (s *service) Open(ctx context.Context, req OpenRequest) (View, error) {
	cfg := s.cfg
	if strings.TrimSpace(req.FacilityType) != "" {
		t, ok := ParseFacilityType(req.FacilityType)
		if !ok {
			return View{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown facility type %q", req.FacilityType), nil)
		}
		cfg.DefaultType = t
	}
	if req.Radius < 0 || req.Radius > cfg.MaxRadius {
		return View{}, apperrors.Wrap(apperrors.CodeInvalidInput, "radius is out of range", nil)
	}
	if req.Radius > 0 {
		cfg.DefaultRadius = req.Radius
	}

	session := newSession(s.newID(), cfg, s.searcher, s.clock, s.logger)
	s.mu.Lock()
	s.evictIdleLocked()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	s.logger.Info("locator session opened", "session", session.ID(), "type", cfg.DefaultType, "radius", cfg.DefaultRadius)
	return session.Dispatch(ctx, PageLoaded{At: s.clock(), LocatingTimeout: cfg.LocatingTimeout}), nil
}

func (s *service) Get(ctx context.Context, sessionID string) (View, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return View{}, err
	}
	return session.View(ctx), nil
}

func (s *service) Dispatch(ctx context.Context, sessionID string, cmd Command) (View, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return View{}, err
	}
	ev, err := s.toEvent(cmd)
	if err != nil {
		return View{}, err
	}
	return session.Dispatch(ctx, ev), nil
}

func (s *service) lookup(sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "locator session not found", nil)
	}
	return session, nil
}

func (s *service) evictIdleLocked() {
	cutoff := s.clock().Add(-s.cfg.SessionTTL)
	for id, session := range s.sessions {
		if session.lastTouched().Before(cutoff) {
			session.close()
			delete(s.sessions, id)
			s.logger.Debug("locator session evicted", "session", id)
		}
	}
}

func (s *service) toEvent(cmd Command) (Event, error) {
	switch strings.ToLower(strings.TrimSpace(cmd.Type)) {
	case CommandLocationResolved:
		loc, err := commandLocation(cmd)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "lat and lng are required", nil)
		}
		return LocationResolved{Location: *loc}, nil
	case CommandLocationFailed:
		reason := strings.TrimSpace(cmd.Reason)
		if reason == "" {
			reason = "unavailable"
		}
		return LocationFailed{Reason: reason}, nil
	case CommandFacilityType:
		t, ok := ParseFacilityType(cmd.FacilityType)
		if !ok {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown facility type %q", cmd.FacilityType), nil)
		}
		return FacilityTypeChanged{Type: t}, nil
	case CommandRadius:
		if cmd.Radius <= 0 || cmd.Radius > s.cfg.MaxRadius {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "radius is out of range", nil)
		}
		return RadiusChanged{Radius: cmd.Radius}, nil
	case CommandUseMyLocation:
		loc, err := commandLocation(cmd)
		if err != nil {
			return nil, err
		}
		return UseMyLocation{Location: loc}, nil
	case CommandRetry:
		return Retry{At: s.clock(), LocatingTimeout: s.cfg.LocatingTimeout}, nil
	case CommandSelectPlace:
		if strings.TrimSpace(cmd.PlaceID) == "" {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "placeId is required", nil)
		}
		return SelectPlace{PlaceID: cmd.PlaceID, At: s.clock(), Highlight: s.cfg.HighlightDuration}, nil
	case CommandCloseModal:
		return CloseModal{}, nil
	default:
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown command %q", cmd.Type), nil)
	}
}

func commandLocation(cmd Command) (*LatLng, error) {
	if cmd.Lat == nil && cmd.Lng == nil {
		return nil, nil
	}
	if cmd.Lat == nil || cmd.Lng == nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "lat and lng must be sent together", nil)
	}
	loc := LatLng{Lat: *cmd.Lat, Lng: *cmd.Lng}
	if !loc.Valid() {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "latitude and longitude are out of range", nil)
	}
	return &loc, nil
}

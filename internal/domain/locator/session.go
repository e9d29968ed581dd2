package locator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/yanqian/cyclecare/pkg/errors"
	"github.com/yanqian/cyclecare/pkg/util"
)

// Session owns the state of one locator page. Reduce runs under the lock; effects run outside it.
type Session struct {
	id       string
	cfg      Config
	searcher Searcher
	clock    util.Clock
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	touched time.Time
	timers  map[string]*time.Timer
	wg      sync.WaitGroup
}

func newSession(id string, cfg Config, searcher Searcher, clock util.Clock, logger *slog.Logger) *Session {
	clock = clock.OrDefault()
	return &Session{
		id:       id,
		cfg:      cfg,
		searcher: searcher,
		clock:    clock,
		logger:   logger.With("session", id),
		state: State{
			Phase:    PhaseUninitialized,
			Type:     cfg.DefaultType,
			Radius:   cfg.DefaultRadius,
			Fallback: cfg.Fallback,
		},
		touched: clock(),
		timers:  make(map[string]*time.Timer),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Dispatch applies ev, performs the resulting effects and returns the new view.
func (s *Session) Dispatch(ctx context.Context, ev Event) View {
	s.run(ctx, s.apply(ev))
	return s.View(ctx)
}

// View projects the current state, expiring a stale geolocation request first.
func (s *Session) View(ctx context.Context) View {
	s.run(ctx, s.apply(nil))
	s.mu.Lock()
	defer s.mu.Unlock()
	return Project(s.id, s.state, s.cfg, s.clock())
}

// Snapshot returns a copy of the raw state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until background searches finish.
func (s *Session) Wait() { s.wg.Wait() }

func (s *Session) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Session) apply(ev Event) []Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()

	var effects []Effect
	if s.state.Phase == PhaseLocating && !s.state.LocatingDeadline.IsZero() && !now.Before(s.state.LocatingDeadline) {
		effects = append(effects, s.reduceLocked(LocationFailed{Reason: "timeout"})...)
	}
	if ev != nil {
		effects = append(effects, s.reduceLocked(ev)...)
		s.touched = now
	}
	return effects
}

func (s *Session) reduceLocked(ev Event) []Effect {
	prev := s.state
	next, effects := Reduce(prev, ev)
	s.state = next

	if failed, ok := ev.(LocationFailed); ok && prev.Phase == PhaseLocating {
		if next.LocationSource == SourceFallback {
			s.logger.Warn("geolocation unavailable, using fallback location",
				"reason", failed.Reason, "lat", next.Location.Lat, "lng", next.Location.Lng)
		} else {
			s.logger.Warn("geolocation unavailable", "reason", failed.Reason)
		}
	}
	if prev.Phase != next.Phase {
		s.logger.Debug("locator transition", "from", prev.Phase, "to", next.Phase)
	}
	return effects
}

func (s *Session) run(ctx context.Context, effects []Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case SearchNearby:
			if s.cfg.AsyncSearch {
				s.wg.Add(1)
				go func(q Query) {
					defer s.wg.Done()
					searchCtx, cancel := context.WithTimeout(context.Background(), s.cfg.SearchTimeout)
					defer cancel()
					s.search(searchCtx, q)
				}(e.Query)
				continue
			}
			searchCtx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
			s.search(searchCtx, e.Query)
			cancel()
		case ClearHighlight:
			s.scheduleHighlightClear(e)
		case RequestGeolocation:
			// performed by the browser; the view carries the options
		}
	}
}

func (s *Session) search(ctx context.Context, q Query) {
	places, err := s.searcher.Nearby(ctx, q)
	var ev Event
	if err != nil {
		s.logger.Error("nearby search failed", "type", q.Type, "radius", q.Radius, "error", err)
		ev = SearchFailed{Query: q, Message: failureMessage(err)}
	} else {
		ev = SearchSucceeded{Query: q, Places: places}
	}
	s.run(ctx, s.apply(ev))
}

func (s *Session) scheduleHighlightClear(e ClearHighlight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[e.PlaceID]; ok {
		t.Stop()
	}
	placeID := e.PlaceID
	s.timers[placeID] = time.AfterFunc(e.After, func() {
		s.mu.Lock()
		delete(s.timers, placeID)
		s.mu.Unlock()
		s.run(context.Background(), s.apply(HighlightExpired{PlaceID: placeID}))
	})
}

func failureMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Code == apperrors.CodeUpstreamError || appErr.Code == apperrors.CodeNetwork {
			return "Failed to fetch nearby places"
		}
		return appErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The search timed out"
	}
	return err.Error()
}

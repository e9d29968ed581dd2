package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	apperrors "github.com/yanqian/cyclecare/pkg/errors"
	"github.com/yanqian/cyclecare/pkg/util"
)

// Service exposes analytics dashboard rendering.
type Service interface {
	Render(ctx context.Context, raw []byte) Dashboard
	RenderProfile(ctx context.Context, profileID string) (Dashboard, error)
	SavePayload(ctx context.Context, profileID string, raw []byte) error
	Resize(ctx context.Context, profileID string) error
}

// PayloadRepository stores the chart document for each profile.
type PayloadRepository interface {
	Get(ctx context.Context, profileID string) ([]byte, bool, error)
	Save(ctx context.Context, profileID string, raw []byte) error
}

type service struct {
	cfg    Config
	repo   PayloadRepository
	logger *slog.Logger
	clock  util.Clock

	mu     sync.Mutex
	boards map[string]*boardEntry
}

type boardEntry struct {
	board   *Board
	touched time.Time
}

// NewService wires up the analytics domain.
func NewService(cfg Config, repo PayloadRepository, logger *slog.Logger) Service {
	if cfg.MoodSource == "" {
		cfg.MoodSource = MoodSourceData
	}
	if cfg.BoardTTL <= 0 {
		cfg.BoardTTL = DefaultBoardTTL
	}
	return &service{
		cfg:    cfg,
		repo:   repo,
		logger: logger.With("component", "analytics.service"),
		clock:  util.NowUTC,
		boards: make(map[string]*boardEntry),
	}
}

// Render builds a dashboard for a one-off payload. It never fails: problems surface as a banner.
func (s *service) Render(ctx context.Context, raw []byte) Dashboard {
	board := NewBoard(DefaultCanvases, 0, s.logger)
	defer board.Close()
	return s.renderOnto(board, raw)
}

func (s *service) RenderProfile(ctx context.Context, profileID string) (Dashboard, error) {
	id, err := normalizeProfileID(profileID)
	if err != nil {
		return Dashboard{}, err
	}
	raw, found, err := s.repo.Get(ctx, id)
	if err != nil {
		// storage trouble degrades the page like a missing payload
		s.logger.Error("load chart payload failed", "profile", id, "error", err)
		raw = nil
	} else if !found {
		s.logger.Info("no chart payload stored", "profile", id)
	}
	return s.renderOnto(s.boardFor(id), raw), nil
}

func (s *service) SavePayload(ctx context.Context, profileID string, raw []byte) error {
	id, err := normalizeProfileID(profileID)
	if err != nil {
		return err
	}
	if _, err := Decode(raw); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "chart payload is not a valid document", err)
	}
	if err := s.repo.Save(ctx, id, raw); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to store chart payload", err)
	}
	s.logger.Info("chart payload stored", "profile", id, "bytes", len(raw))
	return nil
}

func (s *service) Resize(ctx context.Context, profileID string) error {
	id, err := normalizeProfileID(profileID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.evictIdleLocked()
	entry, ok := s.boards[id]
	if ok {
		entry.touched = s.clock()
	}
	s.mu.Unlock()
	if !ok {
		return apperrors.Wrap(apperrors.CodeNotFound, "no dashboard rendered for profile", nil)
	}
	entry.board.RequestReflow()
	return nil
}

func (s *service) renderOnto(board *Board, raw []byte) Dashboard {
	payload, err := Decode(raw)
	if err != nil {
		s.logger.Warn("chart payload rejected, rendering placeholders", "error", err)
		for _, cfg := range PlaceholderCharts() {
			board.Render(cfg)
		}
		return Dashboard{Charts: board.Charts(), Banner: newBanner(err)}
	}

	assessment := Assess(payload, s.cfg.MoodSource)
	dash := Dashboard{
		HasData: assessment.Any(),
		Issues:  assessment.Issues,
		Debug:   BuildDebugPanel(payload),
		Payload: json.RawMessage(raw),
	}
	if !dash.HasData {
		dash.Notice = noDataNotice
	}
	for _, issue := range assessment.Issues {
		s.logger.Warn("chart payload issue", "issue", issue)
	}
	for _, cfg := range BuildCharts(payload, assessment) {
		board.Render(cfg)
	}
	dash.Charts = board.Charts()
	return dash
}

func (s *service) boardFor(profileID string) *Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictIdleLocked()
	entry, ok := s.boards[profileID]
	if !ok {
		entry = &boardEntry{board: NewBoard(DefaultCanvases, s.cfg.ReflowDelay, s.logger)}
		s.boards[profileID] = entry
	}
	entry.touched = s.clock()
	return entry.board
}

func (s *service) evictIdleLocked() {
	cutoff := s.clock().Add(-s.cfg.BoardTTL)
	for id, entry := range s.boards {
		if entry.touched.Before(cutoff) {
			entry.board.Close()
			delete(s.boards, id)
			s.logger.Debug("analytics board evicted", "profile", id)
		}
	}
}

func normalizeProfileID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "profile id cannot be empty", nil)
	}
	if len(id) > 128 {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "profile id is too long", nil)
	}
	return id, nil
}

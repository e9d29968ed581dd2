package analytics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/yanqian/cyclecare/pkg/debounce"
	"github.com/yanqian/cyclecare/pkg/util"
)

// Board owns the charts mounted on one analytics page. Rendering to a canvas
// replaces whatever was mounted there before.
type Board struct {
	mu       sync.Mutex
	order    []string
	known    map[string]struct{}
	charts   map[string]*RenderedChart
	reflows  int
	reflower *debounce.Debouncer
	now      util.Clock
	logger   *slog.Logger
}

// NewBoard builds a board for the given canvas ids. Reflow requests are coalesced over reflowDelay.
func NewBoard(canvases []string, reflowDelay time.Duration, logger *slog.Logger) *Board {
	b := &Board{
		order:  append([]string(nil), canvases...),
		known:  make(map[string]struct{}, len(canvases)),
		charts: make(map[string]*RenderedChart, len(canvases)),
		now:    util.NowUTC,
		logger: logger.With("component", "analytics.board"),
	}
	for _, id := range canvases {
		b.known[id] = struct{}{}
	}
	b.reflower = debounce.New(reflowDelay, b.reflow)
	return b
}

// Render mounts cfg on its canvas. It reports false, and does nothing, for an unknown canvas.
func (b *Board) Render(cfg ChartConfig) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.known[cfg.CanvasID]; !ok {
		b.logger.Debug("canvas not present, skipping chart", "canvas", cfg.CanvasID)
		return false
	}
	generation := 1
	if prev, ok := b.charts[cfg.CanvasID]; ok {
		generation = prev.Generation + 1
	}
	b.charts[cfg.CanvasID] = &RenderedChart{
		ChartConfig: cfg,
		Generation:  generation,
		Layout:      b.reflows,
		RenderedAt:  b.now(),
	}
	return true
}

// Get returns the chart mounted on a canvas.
func (b *Board) Get(canvasID string) (RenderedChart, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	chart, ok := b.charts[canvasID]
	if !ok {
		return RenderedChart{}, false
	}
	return *chart, true
}

// Destroy unmounts the chart on a canvas.
func (b *Board) Destroy(canvasID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.charts, canvasID)
}

// Charts lists mounted charts in page order.
func (b *Board) Charts() []RenderedChart {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RenderedChart, 0, len(b.charts))
	for _, id := range b.order {
		if chart, ok := b.charts[id]; ok {
			out = append(out, *chart)
		}
	}
	return out
}

// RequestReflow asks for a layout pass; bursts collapse into one.
func (b *Board) RequestReflow() {
	b.reflower.Trigger()
}

// Reflows reports how many layout passes have run.
func (b *Board) Reflows() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reflows
}

// Close drops any pending reflow.
func (b *Board) Close() {
	b.reflower.Stop()
}

func (b *Board) reflow() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reflows++
	for _, chart := range b.charts {
		chart.Layout = b.reflows
	}
	b.logger.Debug("charts reflowed", "pass", b.reflows, "charts", len(b.charts))
}

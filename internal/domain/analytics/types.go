package analytics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Canvas element ids the rendered page exposes. A chart addressed to any other id is dropped.
const (
	CanvasCycleLength  = "cycleLengthChart"
	CanvasSymptoms     = "symptomDistributionChart"
	CanvasMood         = "moodTrackerChart"
	CanvasPeriodLength = "periodLengthChart"
)

// DefaultCanvases lists the chart slots in page order.
var DefaultCanvases = []string{CanvasCycleLength, CanvasSymptoms, CanvasMood, CanvasPeriodLength}

// ChartPayload is the document the server embeds in the analytics page.
type ChartPayload struct {
	ChartData     *CycleSeries  `json:"chart_data,omitempty"`
	SymptomCounts SymptomCounts `json:"symptom_counts,omitempty"`
	MoodData      *MoodSeries   `json:"mood_data,omitempty"`
}

// CycleSeries holds index-aligned cycle measurements keyed by cycle start date.
type CycleSeries struct {
	Dates         []string `json:"dates"`
	CycleLengths  []int    `json:"cycle_lengths"`
	PeriodLengths []int    `json:"period_lengths"`
}

// MoodSeries carries mood tallies. Data and Values are two competing value arrays;
// MoodSource decides which one feeds the chart.
type MoodSeries struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data,omitempty"`
	Values []int    `json:"values,omitempty"`
}

// SymptomCount is one symptom tally.
type SymptomCount struct {
	Name  string
	Count int
}

// SymptomCounts is a symptom-name to count mapping that keeps document order.
type SymptomCounts []SymptomCount

// UnmarshalJSON decodes a JSON object while preserving key order.
func (s *SymptomCounts) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("symptom_counts must be an object")
	}
	out := make(SymptomCounts, 0)
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected symptom key %v", keyTok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("symptom %q: %w", key, err)
		}
		if i, dup := index[key]; dup {
			out[i].Count = count
			continue
		}
		index[key] = len(out)
		out = append(out, SymptomCount{Name: key, Count: count})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

// MarshalJSON encodes the counts back into an ordered JSON object.
func (s SymptomCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", item.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Total sums all counts.
func (s SymptomCounts) Total() int {
	total := 0
	for _, item := range s {
		total += item.Count
	}
	return total
}

// ChartKind is the chart type handed to the charting library.
type ChartKind string

const (
	KindLine     ChartKind = "line"
	KindDoughnut ChartKind = "doughnut"
	KindBar      ChartKind = "bar"
)

// ChartConfig is the declarative configuration for one canvas.
type ChartConfig struct {
	CanvasID    string      `json:"canvasId"`
	Kind        ChartKind   `json:"type"`
	Placeholder bool        `json:"placeholder"`
	Labels      []string    `json:"labels"`
	Datasets    []Dataset   `json:"datasets"`
	Axis        *AxisBounds `json:"axis,omitempty"`
	Legend      Legend      `json:"legend"`
	Cutout      string      `json:"cutout,omitempty"`
	Tooltips    []string    `json:"tooltips"`
}

// Dataset is one series within a chart.
type Dataset struct {
	Label           string   `json:"label,omitempty"`
	Data            []int    `json:"data"`
	BackgroundColor []string `json:"backgroundColor"`
	BorderColor     []string `json:"borderColor,omitempty"`
	BorderDash      []int    `json:"borderDash,omitempty"`
	BorderWidth     int      `json:"borderWidth"`
	Fill            bool     `json:"fill,omitempty"`
	Tension         float64  `json:"tension,omitempty"`
	PointRadius     int      `json:"pointRadius"`
}

// AxisBounds describes the value axis. Min and Max are nil when the library picks them.
type AxisBounds struct {
	Min         *int `json:"min,omitempty"`
	Max         *int `json:"max,omitempty"`
	BeginAtZero bool `json:"beginAtZero"`
	StepSize    int  `json:"stepSize,omitempty"`
}

// Legend controls legend placement.
type Legend struct {
	Display  bool   `json:"display"`
	Position string `json:"position,omitempty"`
}

// RenderedChart is a chart currently mounted on a board.
type RenderedChart struct {
	ChartConfig
	Generation int       `json:"generation"`
	Layout     int       `json:"layout"`
	RenderedAt time.Time `json:"renderedAt"`
}

// Banner is the single user-visible error shown when the payload cannot be used.
type Banner struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// DebugPanel mirrors the payload as pretty printed JSON for the debug section.
type DebugPanel struct {
	Cycle    string `json:"cycle"`
	Symptoms string `json:"symptoms"`
}

// Dashboard is the full analytics page state.
type Dashboard struct {
	Charts  []RenderedChart `json:"charts"`
	HasData bool            `json:"hasData"`
	Banner  *Banner         `json:"banner,omitempty"`
	Notice  string          `json:"notice,omitempty"`
	Issues  []string        `json:"issues,omitempty"`
	Debug   *DebugPanel     `json:"debug,omitempty"`
	Payload json.RawMessage `json:"-"`
}

// MoodSource picks which mood array feeds the mood chart.
type MoodSource string

const (
	MoodSourceData   MoodSource = "data"
	MoodSourceValues MoodSource = "values"
)

// Config wires runtime knobs for the analytics domain.
type Config struct {
	MoodSource  MoodSource
	ReflowDelay time.Duration
	// BoardTTL is how long a profile board survives without renders or resizes.
	BoardTTL time.Duration
}

// DefaultBoardTTL applies when Config.BoardTTL is unset.
const DefaultBoardTTL = 30 * time.Minute

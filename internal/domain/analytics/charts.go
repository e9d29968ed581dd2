package analytics

import (
	"fmt"
	"math"
	"slices"
)

const (
	cycleAxisFloor   = 15
	cycleAxisCeiling = 45
	cycleAxisPadding = 2

	placeholderGrey      = "#d1d5db"
	placeholderPointGrey = "#9ca3af"
)

var (
	symptomPalette = []string{
		"#ec4899", "#f97316", "#eab308", "#22c55e", "#3b82f6", "#8b5cf6",
		"#ef4444", "#06b6d4", "#84cc16", "#f59e0b", "#10b981", "#6366f1",
	}
	moodFill = []string{
		"rgba(239, 68, 68, 0.7)",
		"rgba(249, 115, 22, 0.7)",
		"rgba(234, 179, 8, 0.7)",
		"rgba(16, 185, 129, 0.7)",
		"rgba(59, 130, 246, 0.7)",
	}
	moodBorder = []string{
		"rgba(239, 68, 68, 1)",
		"rgba(249, 115, 22, 1)",
		"rgba(234, 179, 8, 1)",
		"rgba(16, 185, 129, 1)",
		"rgba(59, 130, 246, 1)",
	}
	moodNames = []string{"Sad", "Down", "Neutral", "Happy", "Excited"}
)

// BuildCharts produces one config per slot, in page order, following the assessment.
func BuildCharts(p ChartPayload, a Assessment) []ChartConfig {
	charts := make([]ChartConfig, 0, len(DefaultCanvases))
	if a.Cycle.HasData {
		charts = append(charts, CycleLengthChart(p.ChartData.Dates, p.ChartData.CycleLengths))
	} else {
		charts = append(charts, emptyCycleChart())
	}
	if a.Symptom.HasData {
		charts = append(charts, SymptomChart(p.SymptomCounts))
	} else {
		charts = append(charts, emptySymptomChart())
	}
	if a.Mood.HasData {
		charts = append(charts, MoodChart(p.MoodData.Labels, a.MoodValues))
	} else {
		charts = append(charts, emptyMoodChart())
	}
	if a.Period.HasData {
		n := len(p.ChartData.PeriodLengths)
		charts = append(charts, PeriodLengthChart(p.ChartData.Dates[:n], p.ChartData.PeriodLengths))
	} else {
		charts = append(charts, emptyPeriodChart())
	}
	return charts
}

// PlaceholderCharts returns the "no data" rendering for every slot.
func PlaceholderCharts() []ChartConfig {
	return []ChartConfig{emptyCycleChart(), emptySymptomChart(), emptyMoodChart(), emptyPeriodChart()}
}

// CycleLengthChart builds the cycle trend line.
func CycleLengthChart(dates []string, lengths []int) ChartConfig {
	lo, hi := CycleAxisBounds(lengths)
	tooltips := make([]string, len(lengths))
	for i, v := range lengths {
		tooltips[i] = fmt.Sprintf("Cycle: %d days", v)
	}
	return ChartConfig{
		CanvasID: CanvasCycleLength,
		Kind:     KindLine,
		Labels:   slices.Clone(dates),
		Datasets: []Dataset{{
			Label:           "Cycle Length (days)",
			Data:            slices.Clone(lengths),
			BackgroundColor: []string{"rgba(236, 72, 153, 0.1)"},
			BorderColor:     []string{"#ec4899"},
			BorderWidth:     2,
			Fill:            true,
			Tension:         0.4,
			PointRadius:     3,
		}},
		Axis:     &AxisBounds{Min: intPtr(lo), Max: intPtr(hi), StepSize: 1},
		Legend:   Legend{Display: false},
		Tooltips: tooltips,
	}
}

// CycleAxisBounds pads the observed range by two days and clamps it to [15,45].
func CycleAxisBounds(lengths []int) (int, int) {
	if len(lengths) == 0 {
		return 20, cycleAxisCeiling
	}
	lo := clamp(slices.Min(lengths)-cycleAxisPadding, cycleAxisFloor, cycleAxisCeiling)
	hi := clamp(slices.Max(lengths)+cycleAxisPadding, cycleAxisFloor, cycleAxisCeiling)
	if lo >= hi {
		if hi == cycleAxisFloor {
			hi = lo + 1
		} else {
			lo = hi - 1
		}
	}
	return lo, hi
}

// SymptomChart builds the symptom distribution doughnut.
func SymptomChart(counts SymptomCounts) ChartConfig {
	labels := make([]string, len(counts))
	data := make([]int, len(counts))
	tooltips := make([]string, len(counts))
	total := counts.Total()
	for i, item := range counts {
		labels[i] = item.Name
		data[i] = item.Count
		tooltips[i] = fmt.Sprintf("%s: %d (%d%%)", item.Name, item.Count, Percentage(item.Count, total))
	}
	return ChartConfig{
		CanvasID: CanvasSymptoms,
		Kind:     KindDoughnut,
		Labels:   labels,
		Datasets: []Dataset{{
			Data:            data,
			BackgroundColor: slices.Clone(symptomPalette),
			BorderColor:     []string{"#ffffff"},
			BorderWidth:     2,
		}},
		Legend:   Legend{Display: true, Position: "bottom"},
		Cutout:   "70%",
		Tooltips: tooltips,
	}
}

// Percentage is round(value/total*100); a zero total yields 0.
func Percentage(value, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(value) / float64(total) * 100))
}

// MoodChart builds the categorical mood bar chart.
func MoodChart(labels []string, values []int) ChartConfig {
	tooltips := make([]string, len(values))
	for i, v := range values {
		name := ""
		if i < len(moodNames) {
			name = moodNames[i]
		} else if i < len(labels) {
			name = labels[i]
		}
		tooltips[i] = fmt.Sprintf("%s: %d entries", name, v)
	}
	return ChartConfig{
		CanvasID: CanvasMood,
		Kind:     KindBar,
		Labels:   slices.Clone(labels),
		Datasets: []Dataset{{
			Label:           "Mood Level",
			Data:            slices.Clone(values),
			BackgroundColor: slices.Clone(moodFill),
			BorderColor:     slices.Clone(moodBorder),
			BorderWidth:     1,
		}},
		Axis:     &AxisBounds{BeginAtZero: true, StepSize: 1},
		Legend:   Legend{Display: false},
		Tooltips: tooltips,
	}
}

// PeriodLengthChart builds the bleeding-days trend line.
func PeriodLengthChart(dates []string, lengths []int) ChartConfig {
	tooltips := make([]string, len(lengths))
	for i, v := range lengths {
		tooltips[i] = fmt.Sprintf("Period: %d days", v)
	}
	return ChartConfig{
		CanvasID: CanvasPeriodLength,
		Kind:     KindLine,
		Labels:   slices.Clone(dates),
		Datasets: []Dataset{{
			Label:           "Period Length (days)",
			Data:            slices.Clone(lengths),
			BackgroundColor: []string{"rgba(139, 92, 246, 0.1)"},
			BorderColor:     []string{"#8b5cf6"},
			BorderWidth:     2,
			Fill:            true,
			Tension:         0.4,
			PointRadius:     3,
		}},
		Axis:     &AxisBounds{BeginAtZero: true, StepSize: 1},
		Legend:   Legend{Display: false},
		Tooltips: tooltips,
	}
}

func emptyCycleChart() ChartConfig {
	return ChartConfig{
		CanvasID:    CanvasCycleLength,
		Kind:        KindLine,
		Placeholder: true,
		Labels:      []string{"No data available"},
		Datasets: []Dataset{{
			Label:           "Cycle Length (days)",
			Data:            []int{},
			BackgroundColor: []string{"rgba(209, 213, 219, 0.1)"},
			BorderColor:     []string{placeholderGrey},
			BorderDash:      []int{5, 5},
			BorderWidth:     2,
		}},
		Axis:     &AxisBounds{Min: intPtr(20), Max: intPtr(45), BeginAtZero: true},
		Tooltips: []string{"No cycle data available"},
	}
}

func emptySymptomChart() ChartConfig {
	return ChartConfig{
		CanvasID:    CanvasSymptoms,
		Kind:        KindDoughnut,
		Placeholder: true,
		Labels:      []string{"No symptoms logged"},
		Datasets: []Dataset{{
			Data:            []int{1},
			BackgroundColor: []string{"#e5e7eb"},
		}},
		Cutout:   "70%",
		Tooltips: []string{"No symptom data available"},
	}
}

func emptyMoodChart() ChartConfig {
	return ChartConfig{
		CanvasID:    CanvasMood,
		Kind:        KindBar,
		Placeholder: true,
		Labels:      []string{"No mood data"},
		Datasets: []Dataset{{
			Label:           "Mood",
			Data:            []int{},
			BackgroundColor: []string{"rgba(156, 163, 175, 0.6)"},
			BorderColor:     []string{"rgba(107, 114, 128, 1)"},
			BorderWidth:     1,
		}},
		Axis:     &AxisBounds{Max: intPtr(5), BeginAtZero: true},
		Tooltips: []string{"No mood data available"},
	}
}

func emptyPeriodChart() ChartConfig {
	return ChartConfig{
		CanvasID:    CanvasPeriodLength,
		Kind:        KindLine,
		Placeholder: true,
		Labels:      []string{"No data available"},
		Datasets: []Dataset{{
			Label:           "Period Length (days)",
			Data:            []int{},
			BackgroundColor: []string{"rgba(209, 213, 219, 0.1)"},
			BorderColor:     []string{placeholderPointGrey},
			BorderDash:      []int{5, 5},
			BorderWidth:     2,
		}},
		Axis:     &AxisBounds{Min: intPtr(0), Max: intPtr(10), BeginAtZero: true},
		Tooltips: []string{"No period data available"},
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func intPtr(v int) *int {
	return &v
}

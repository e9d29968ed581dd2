package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCycleAxisBounds(t *testing.T) {
	lo, hi := CycleAxisBounds([]int{28, 30, 26})
	require.LessOrEqual(t, lo, 24)
	require.GreaterOrEqual(t, hi, 32)
	require.GreaterOrEqual(t, lo, 15)
	require.LessOrEqual(t, hi, 45)
	require.Equal(t, 24, lo)
	require.Equal(t, 32, hi)
}

func TestCycleAxisBoundsClamp(t *testing.T) {
	lo, hi := CycleAxisBounds([]int{14, 50})
	require.Equal(t, 15, lo)
	require.Equal(t, 45, hi)

	lo, hi = CycleAxisBounds([]int{60, 61})
	require.Less(t, lo, hi)
	require.Equal(t, 45, hi)

	lo, hi = CycleAxisBounds([]int{5})
	require.Less(t, lo, hi)
	require.Equal(t, 15, lo)
}

func TestCycleLengthChartTooltips(t *testing.T) {
	cfg := CycleLengthChart([]string{"2024-01-01", "2024-01-29"}, []int{28, 30})
	require.Equal(t, KindLine, cfg.Kind)
	require.False(t, cfg.Placeholder)
	require.Equal(t, []string{"Cycle: 28 days", "Cycle: 30 days"}, cfg.Tooltips)
	require.Equal(t, []string{"#ec4899"}, cfg.Datasets[0].BorderColor)
	require.Equal(t, 26, *cfg.Axis.Min)
	require.Equal(t, 32, *cfg.Axis.Max)
}

func TestSymptomChartPercentages(t *testing.T) {
	cfg := SymptomChart(SymptomCounts{{Name: "Cramps", Count: 5}, {Name: "Fatigue", Count: 3}})
	require.Equal(t, KindDoughnut, cfg.Kind)
	require.Equal(t, []string{"Cramps", "Fatigue"}, cfg.Labels)
	require.Equal(t, "Cramps: 5 (63%)", cfg.Tooltips[0])
	require.Equal(t, "Fatigue: 3 (38%)", cfg.Tooltips[1])
	require.Len(t, cfg.Datasets[0].BackgroundColor, 12)
}

func TestPercentageZeroTotal(t *testing.T) {
	require.Equal(t, 0, Percentage(0, 0))
	require.Equal(t, 50, Percentage(1, 2))
}

func TestMoodChartTooltipNames(t *testing.T) {
	labels := []string{"sad", "down", "neutral", "happy", "excited", "anxious"}
	cfg := MoodChart(labels, []int{1, 2, 3, 4, 5, 6})
	require.Equal(t, "Sad: 1 entries", cfg.Tooltips[0])
	require.Equal(t, "Excited: 5 entries", cfg.Tooltips[4])
	require.Equal(t, "anxious: 6 entries", cfg.Tooltips[5])
}

func TestBuildChartsFallsBackPerSlot(t *testing.T) {
	payload := ChartPayload{
		ChartData: &CycleSeries{
			Dates:         []string{"2024-01-01", "2024-01-29", "2024-02-28"},
			CycleLengths:  []int{28, 30, 26},
			PeriodLengths: []int{5, 4},
		},
	}
	charts := BuildCharts(payload, Assess(payload, MoodSourceData))
	require.Len(t, charts, 4)

	byCanvas := map[string]ChartConfig{}
	for _, c := range charts {
		byCanvas[c.CanvasID] = c
	}
	require.False(t, byCanvas[CanvasCycleLength].Placeholder)
	require.True(t, byCanvas[CanvasSymptoms].Placeholder)
	require.True(t, byCanvas[CanvasMood].Placeholder)
	require.False(t, byCanvas[CanvasPeriodLength].Placeholder)
	require.Equal(t, []string{"2024-01-01", "2024-01-29"}, byCanvas[CanvasPeriodLength].Labels)
	require.Equal(t, []string{"No symptoms logged"}, byCanvas[CanvasSymptoms].Labels)
}

func TestPlaceholderChartsCoverEverySlot(t *testing.T) {
	charts := PlaceholderCharts()
	require.Len(t, charts, len(DefaultCanvases))
	for i, c := range charts {
		require.Equal(t, DefaultCanvases[i], c.CanvasID)
		require.True(t, c.Placeholder)
		require.NotEmpty(t, c.Tooltips)
	}
}

package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/cyclecare/pkg/errors"
)

func TestDecodeKeepsSymptomOrder(t *testing.T) {
	raw := `{"symptom_counts":{"Fatigue":3,"Cramps":5,"Bloating":1}}`
	payload, err := Decode([]byte(raw))
	require.NoError(t, err)
	require.Equal(t, SymptomCounts{
		{Name: "Fatigue", Count: 3},
		{Name: "Cramps", Count: 5},
		{Name: "Bloating", Count: 1},
	}, payload.SymptomCounts)
}

func TestDecodeRejectsMissingAndMalformed(t *testing.T) {
	_, err := Decode([]byte("   "))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeDataShape))

	_, err = Decode([]byte(`{"chart_data":`))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeDataShape))

	_, err = Decode([]byte(`{"symptom_counts":["Cramps"]}`))
	require.Error(t, err)
}

func TestDecodeNullIsEmptyPayload(t *testing.T) {
	payload, err := Decode([]byte("null"))
	require.NoError(t, err)
	require.False(t, Assess(payload, MoodSourceData).Any())
}

func TestAssessPerSlot(t *testing.T) {
	cases := []struct {
		name    string
		payload ChartPayload
		cycle   bool
		symptom bool
		mood    bool
	}{
		{
			name:    "empty",
			payload: ChartPayload{},
		},
		{
			name: "cycle only",
			payload: ChartPayload{ChartData: &CycleSeries{
				Dates:        []string{"2024-01-01", "2024-01-29"},
				CycleLengths: []int{28, 30},
			}},
			cycle: true,
		},
		{
			name:    "symptoms only",
			payload: ChartPayload{SymptomCounts: SymptomCounts{{Name: "Cramps", Count: 2}}},
			symptom: true,
		},
		{
			name: "mood only",
			payload: ChartPayload{MoodData: &MoodSeries{
				Labels: []string{"sad", "happy"},
				Data:   []int{1, 4},
			}},
			mood: true,
		},
		{
			name: "dates without lengths",
			payload: ChartPayload{
				ChartData:     &CycleSeries{Dates: []string{"2024-01-01"}},
				SymptomCounts: SymptomCounts{{Name: "Acne", Count: 1}},
			},
			symptom: true,
		},
		{
			name: "misaligned cycle arrays",
			payload: ChartPayload{ChartData: &CycleSeries{
				Dates:        []string{"2024-01-01"},
				CycleLengths: []int{28, 30},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := Assess(tc.payload, MoodSourceData)
			require.Equal(t, tc.cycle, a.Cycle.HasData)
			require.Equal(t, tc.symptom, a.Symptom.HasData)
			require.Equal(t, tc.mood, a.Mood.HasData)
		})
	}
}

func TestAssessReportsMisalignment(t *testing.T) {
	a := Assess(ChartPayload{ChartData: &CycleSeries{
		Dates:        []string{"2024-01-01"},
		CycleLengths: []int{28, 30},
	}}, MoodSourceData)
	require.Len(t, a.Issues, 1)
	require.Contains(t, a.Issues[0], "cycle_lengths")
}

func TestResolveMoodSeries(t *testing.T) {
	values, issue := resolveMoodSeries(&MoodSeries{Labels: []string{"a"}, Values: []int{2}}, MoodSourceData)
	require.Equal(t, []int{2}, values)
	require.Empty(t, issue)

	values, issue = resolveMoodSeries(&MoodSeries{Labels: []string{"a"}, Data: []int{1}, Values: []int{2}}, MoodSourceData)
	require.Equal(t, []int{1}, values)
	require.Contains(t, issue, "disagree")

	values, issue = resolveMoodSeries(&MoodSeries{Labels: []string{"a"}, Data: []int{1}, Values: []int{2}}, MoodSourceValues)
	require.Equal(t, []int{2}, values)
	require.Contains(t, issue, "using values")

	values, issue = resolveMoodSeries(&MoodSeries{Labels: []string{"a"}, Data: []int{3}, Values: []int{3}}, MoodSourceData)
	require.Equal(t, []int{3}, values)
	require.Empty(t, issue)
}

package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	apperrors "github.com/yanqian/cyclecare/pkg/errors"
)

// Decode parses the embedded chart document. Missing or malformed input is a data shape error.
func Decode(raw []byte) (ChartPayload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ChartPayload{}, apperrors.Wrap(apperrors.CodeDataShape, "chart data element not found", nil)
	}
	var payload ChartPayload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return ChartPayload{}, apperrors.Wrap(apperrors.CodeDataShape, "malformed chart payload", err)
	}
	return payload, nil
}

// SlotStatus records whether a slot renders real data and, if not, why.
type SlotStatus struct {
	HasData bool
	Reason  string
}

// Assessment is the per-slot decision for one payload.
type Assessment struct {
	Cycle   SlotStatus
	Symptom SlotStatus
	Mood    SlotStatus
	Period  SlotStatus
	// MoodValues is the mood series chosen for rendering.
	MoodValues []int
	Issues     []string
}

// Any reports whether at least one slot has real data.
func (a Assessment) Any() bool {
	return a.Cycle.HasData || a.Symptom.HasData || a.Mood.HasData || a.Period.HasData
}

// Assess decides, independently for every slot, between the real and placeholder path.
func Assess(p ChartPayload, source MoodSource) Assessment {
	var a Assessment
	a.Cycle = assessCycle(p.ChartData)
	a.Period = assessPeriod(p.ChartData)
	a.Symptom = assessSymptoms(p.SymptomCounts)

	var moodIssue string
	a.MoodValues, moodIssue = resolveMoodSeries(p.MoodData, source)
	a.Mood = assessMood(p.MoodData, a.MoodValues)

	for _, st := range []SlotStatus{a.Cycle, a.Symptom, a.Mood, a.Period} {
		if st.Reason != "" && st.Reason != reasonMissing {
			a.Issues = append(a.Issues, st.Reason)
		}
	}
	if moodIssue != "" {
		a.Issues = append(a.Issues, moodIssue)
	}
	return a
}

const reasonMissing = "missing"

func assessCycle(c *CycleSeries) SlotStatus {
	if c == nil || len(c.Dates) == 0 || len(c.CycleLengths) == 0 {
		return SlotStatus{Reason: reasonMissing}
	}
	if len(c.Dates) != len(c.CycleLengths) {
		return SlotStatus{Reason: fmt.Sprintf("chart_data.dates has %d entries but cycle_lengths has %d", len(c.Dates), len(c.CycleLengths))}
	}
	return SlotStatus{HasData: true}
}

func assessPeriod(c *CycleSeries) SlotStatus {
	if c == nil || len(c.PeriodLengths) < 2 {
		return SlotStatus{Reason: reasonMissing}
	}
	if len(c.PeriodLengths) > len(c.Dates) {
		return SlotStatus{Reason: fmt.Sprintf("chart_data.period_lengths has %d entries but only %d dates", len(c.PeriodLengths), len(c.Dates))}
	}
	return SlotStatus{HasData: true}
}

func assessSymptoms(s SymptomCounts) SlotStatus {
	if len(s) == 0 {
		return SlotStatus{Reason: reasonMissing}
	}
	return SlotStatus{HasData: true}
}

func assessMood(m *MoodSeries, values []int) SlotStatus {
	if m == nil || len(m.Labels) == 0 || len(values) == 0 {
		return SlotStatus{Reason: reasonMissing}
	}
	if len(m.Labels) != len(values) {
		return SlotStatus{Reason: fmt.Sprintf("mood_data.labels has %d entries but the mood series has %d", len(m.Labels), len(values))}
	}
	return SlotStatus{HasData: true}
}

// resolveMoodSeries returns the configured array, falling back to the other one when the
// configured array is empty. Two populated arrays that disagree are reported, not merged.
func resolveMoodSeries(m *MoodSeries, source MoodSource) ([]int, string) {
	if m == nil {
		return nil, ""
	}
	preferred, other := m.Data, m.Values
	preferredName, otherName := "data", "values"
	if source == MoodSourceValues {
		preferred, other = m.Values, m.Data
		preferredName, otherName = "values", "data"
	}
	if len(preferred) == 0 {
		return other, ""
	}
	if len(other) > 0 && !slices.Equal(preferred, other) {
		return preferred, fmt.Sprintf("mood_data.%s and mood_data.%s disagree; using %s", preferredName, otherName, preferredName)
	}
	return preferred, ""
}

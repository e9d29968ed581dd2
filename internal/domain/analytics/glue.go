package analytics

import (
	"encoding/json"
	"strings"
)

const (
	noDataNotice  = "No data available to display. Start tracking your cycles to see analytics."
	bannerTitle   = "Error"
	bannerMessage = "Failed to initialize charts. Please try refreshing the page."
)

func newBanner(err error) *Banner {
	return &Banner{Title: bannerTitle, Message: bannerMessage, Detail: err.Error()}
}

// BuildDebugPanel renders the payload sections shown in the debug area.
func BuildDebugPanel(p ChartPayload) *DebugPanel {
	cycle := struct {
		Dates         []string `json:"dates"`
		CycleLengths  []int    `json:"cycle_lengths"`
		PeriodLengths []int    `json:"period_lengths"`
	}{Dates: []string{}, CycleLengths: []int{}, PeriodLengths: []int{}}
	if p.ChartData != nil {
		cycle.Dates = nonNil(p.ChartData.Dates)
		cycle.CycleLengths = nonNil(p.ChartData.CycleLengths)
		cycle.PeriodLengths = nonNil(p.ChartData.PeriodLengths)
	}

	symptoms := struct {
		Symptoms SymptomCounts `json:"symptoms"`
		Moods    any           `json:"moods"`
	}{Symptoms: p.SymptomCounts, Moods: map[string]any{}}
	if symptoms.Symptoms == nil {
		symptoms.Symptoms = SymptomCounts{}
	}
	if p.MoodData != nil {
		symptoms.Moods = p.MoodData
	}

	return &DebugPanel{Cycle: prettyJSON(cycle), Symptoms: prettyJSON(symptoms)}
}

// ScrollTarget returns the element id an in-page link should smooth-scroll to.
// Bare "#" links and logout links are left to the browser.
func ScrollTarget(href string) (string, bool) {
	if !strings.HasPrefix(href, "#") || href == "#" {
		return "", false
	}
	if strings.Contains(href, "logout") {
		return "", false
	}
	return strings.TrimPrefix(href, "#"), true
}

func prettyJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

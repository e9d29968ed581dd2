package payloadrepo

import (
	"context"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/cyclecare/internal/domain/analytics"
)

func TestChartPayloadsColumnKeepsDocumentText(t *testing.T) {
	schema, err := os.ReadFile("../../../migrations/0001_chart_payloads.sql")
	require.NoError(t, err)

	column := regexp.MustCompile(`(?im)^\s*payload\s+(\w+)`).FindSubmatch(schema)
	require.NotNil(t, column)
	require.Equal(t, "JSON", string(column[1]))
}

func TestStoredPayloadKeepsSymptomOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "p1", []byte(`{"symptom_counts":{"Fatigue":3,"Cramps":5}}`)))

	raw, found, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.True(t, found)

	payload, err := analytics.Decode(raw)
	require.NoError(t, err)
	chart := analytics.SymptomChart(payload.SymptomCounts)
	require.Equal(t, []string{"Fatigue", "Cramps"}, chart.Labels)
	require.Equal(t, "#ec4899", chart.Datasets[0].BackgroundColor[0])
}

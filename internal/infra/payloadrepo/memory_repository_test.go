package payloadrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryRepositorySaveAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, found, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.False(t, found)

	doc := []byte(`{"symptom_counts":{"Cramps":2}}`)
	require.NoError(t, repo.Save(ctx, "p1", doc))
	doc[0] = 'X'

	raw, found, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `{"symptom_counts":{"Cramps":2}}`, string(raw))
}

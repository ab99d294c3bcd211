package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/shoprec/core"
)

const testFixture = `
products:
  - id: p1
    category: shoes
    rating: 4.5
    featured: true
    vector: [1, 0]
  - id: p2
    category: shoes
    rating: 3
    vector: [0, 1]
    age: 48h
interactions:
  - user: u1
    product: p1
    type: view
    ago: 2h
  - user: u1
    product: p2
    type: purchase
    at: 2024-05-01T10:00:00Z
`

func TestFixture_Seed(t *testing.T) {
	ctx := context.Background()
	f, err := ParseFixture([]byte(testFixture))
	require.NoError(t, err)
	require.Len(t, f.Products, 2)

	cat := NewMemoryCatalog()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.Seed(ctx, cat, cat.Interactions(), now))

	p, err := cat.FindByID(ctx, "p2")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []float64{0, 1}, p.FeatureVector)
	assert.Equal(t, now.Add(-48*time.Hour), p.CreatedAt)

	ins, err := cat.Interactions().FindMany(ctx, core.InteractionFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, ins, 2)
	assert.Equal(t, now.Add(-2*time.Hour), ins[0].Timestamp)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), ins[1].Timestamp.UTC())
}

func TestParseFixture_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "products: [\n"},
		{"missing id", "products:\n  - category: x\n"},
		{"duplicate", "products:\n  - id: a\n  - id: a\n"},
		{"interaction without user", "interactions:\n  - product: p1\n"},
		{"rating above 5", "products:\n  - {id: a, rating: 5.5}\n"},
		{"negative rating", "products:\n  - {id: a, rating: -1}\n"},
		{"vector length mismatch", "products:\n  - {id: a, vector: [1, 0]}\n  - {id: b}\n  - {id: c, vector: [1, 0, 0]}\n"},
		{"non finite vector", "products:\n  - {id: a, vector: [1, .nan]}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixture([]byte(tt.data))
			assert.True(t, core.IsInvalidInput(err), "got %v", err)
		})
	}
}

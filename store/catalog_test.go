package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/shoprec/core"
)

func productIDs(ps []core.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestMemoryCatalog_Products(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCatalog()
	c.PutProducts(
		core.Product{ID: "p1", Category: "shoes", Rating: 4.5, IsFeatured: true},
		core.Product{ID: "p2", Category: "books", Rating: 3},
		core.Product{ID: "p3", Category: "shoes", Rating: 4, IsFeatured: true},
	)
	// 替换保留原位置
	c.PutProduct(core.Product{ID: "p1", Category: "shoes", Rating: 5, IsFeatured: true})

	all, err := c.FindMany(ctx, core.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, productIDs(all))
	assert.Equal(t, 5.0, all[0].Rating)

	tests := []struct {
		name   string
		filter core.ProductFilter
		want   []string
	}{
		{"by category", core.ProductFilter{Category: "shoes"}, []string{"p1", "p3"}},
		{"exclude", core.ProductFilter{ExcludeIDs: []string{"p1"}}, []string{"p2", "p3"}},
		{"ids", core.ProductFilter{IDs: []string{"p3", "p2"}}, []string{"p2", "p3"}},
		{"featured and rating", core.ProductFilter{FeaturedOnly: true, MinRating: 4.5}, []string{"p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.FindMany(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, productIDs(got))
		})
	}

	p, err := c.FindByID(ctx, "p2")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "books", p.Category)

	p, err = c.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestMemoryInteractions(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCatalog()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	store := c.Interactions()

	created, err := store.Create(ctx, core.Interaction{UserID: "u1", ProductID: "p1", Type: core.InteractionView})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, base, created.Timestamp)

	_, err = store.Create(ctx, core.Interaction{UserID: "u1", ProductID: "p2", Type: core.InteractionLike, Timestamp: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = store.Create(ctx, core.Interaction{UserID: "u2", ProductID: "p1", Type: core.InteractionPurchase, Timestamp: base.Add(2 * time.Hour)})
	require.NoError(t, err)

	got, err := store.FindMany(ctx, core.InteractionFilter{UserID: "u1", NewestFirst: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[0].ProductID)

	got, err = store.FindMany(ctx, core.InteractionFilter{Since: base.Add(30 * time.Minute)})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = store.FindMany(ctx, core.InteractionFilter{Types: []core.InteractionType{core.InteractionPurchase}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].UserID)

	got, err = store.FindMany(ctx, core.InteractionFilter{NewestFirst: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].UserID)
}

func TestMemoryCatalog_SaveProductValidation(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCatalog()
	require.NoError(t, c.SaveProduct(ctx, core.Product{ID: "a", Rating: 5, FeatureVector: []float64{1, 0}}))
	require.NoError(t, c.SaveProduct(ctx, core.Product{ID: "b", Rating: 0}))

	err := c.SaveProduct(ctx, core.Product{ID: "c", Rating: 6})
	assert.True(t, core.IsInvalidInput(err), "got %v", err)
	err = c.SaveProduct(ctx, core.Product{ID: "c", Rating: 3, FeatureVector: []float64{1}})
	assert.True(t, core.IsInvalidInput(err), "got %v", err)

	// 替换自身时不和旧值比较
	require.NoError(t, c.SaveProduct(ctx, core.Product{ID: "a", Rating: 5, FeatureVector: []float64{1, 0, 0}}))

	all, err := c.FindMany(ctx, core.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, productIDs(all))
}

package store

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/shoprec/core"
)

func openTestSQL(t *testing.T) *SQLCatalog {
	t.Helper()
	c, err := OpenSQLCatalog(context.Background(), "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLCatalog_Products(t *testing.T) {
	ctx := context.Background()
	c := openTestSQL(t)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, c.SaveProduct(ctx, core.Product{
		ID: "p1", Name: "Runner", Category: "shoes", Rating: 4.5, IsFeatured: true,
		FeatureVector: []float64{0.1, 0.2, 0.7}, CreatedAt: created,
	}))
	require.NoError(t, c.SaveProduct(ctx, core.Product{ID: "p2", Category: "books", Rating: 3.5}))
	require.NoError(t, c.SaveProduct(ctx, core.Product{ID: "p3", Category: "shoes", Rating: 4.8, IsOnSale: true}))

	p, err := c.FindByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []float64{0.1, 0.2, 0.7}, p.FeatureVector)
	assert.True(t, p.IsFeatured)
	assert.True(t, created.Equal(p.CreatedAt))

	p, err = c.FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, p)

	// upsert 保留写入顺序
	require.NoError(t, c.SaveProduct(ctx, core.Product{ID: "p1", Category: "shoes", Rating: 2}))
	all, err := c.FindMany(ctx, core.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, productIDs(all))
	assert.Equal(t, 2.0, all[0].Rating)

	shoes, err := c.FindMany(ctx, core.ProductFilter{Category: "shoes", ExcludeIDs: []string{"p1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, productIDs(shoes))

	byID, err := c.FindMany(ctx, core.ProductFilter{IDs: []string{"p3", "p2"}, MinRating: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, productIDs(byID))
}

func TestSQLCatalog_Interactions(t *testing.T) {
	ctx := context.Background()
	store := openTestSQL(t).Interactions()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, in := range []core.Interaction{
		{UserID: "u1", ProductID: "p1", Type: core.InteractionView, Timestamp: base},
		{UserID: "u1", ProductID: "p2", Type: core.InteractionPurchase, Timestamp: base.Add(time.Hour)},
		{UserID: "u2", ProductID: "p1", Type: core.InteractionLike, Timestamp: base.Add(2 * time.Hour)},
	} {
		got, err := store.Create(ctx, in)
		require.NoError(t, err, "interaction #%d", i)
		assert.NotEmpty(t, got.ID)
	}

	got, err := store.FindMany(ctx, core.InteractionFilter{UserID: "u1", NewestFirst: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ProductID)
	assert.Equal(t, core.InteractionPurchase, got[0].Type)

	got, err = store.FindMany(ctx, core.InteractionFilter{
		Types: []core.InteractionType{core.InteractionView, core.InteractionLike},
		Since: base.Add(time.Minute),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].UserID)
	assert.True(t, base.Add(2*time.Hour).Equal(got[0].Timestamp))
}

func TestSQLCatalog_SaveProductValidation(t *testing.T) {
	ctx := context.Background()
	c := openTestSQL(t)
	require.NoError(t, c.SaveProduct(ctx, core.Product{ID: "p1", Rating: 4, FeatureVector: []float64{1, 0}}))

	tests := []struct {
		name string
		p    core.Product
	}{
		{"rating above 5", core.Product{ID: "p2", Rating: 5.1}},
		{"negative rating", core.Product{ID: "p2", Rating: -0.5}},
		{"nan in vector", core.Product{ID: "p2", Rating: 3, FeatureVector: []float64{1, math.NaN()}}},
		{"inf in vector", core.Product{ID: "p2", Rating: 3, FeatureVector: []float64{math.Inf(1), 0}}},
		{"vector length mismatch", core.Product{ID: "p2", Rating: 3, FeatureVector: []float64{1, 0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.SaveProduct(ctx, tt.p)
			assert.True(t, core.IsInvalidInput(err), "got %v", err)
		})
	}

	all, err := c.FindMany(ctx, core.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, productIDs(all), "rejected products are not written")

	// 唯一的向量可以改变长度，其他商品没有向量时也可以写入
	require.NoError(t, c.SaveProduct(ctx, core.Product{ID: "p1", Rating: 4, FeatureVector: []float64{1, 0, 0}}))
	require.NoError(t, c.SaveProduct(ctx, core.Product{ID: "p3", Rating: 0}))
}

func TestSQLCatalog_CorruptRows(t *testing.T) {
	ctx := context.Background()
	insert := func(t *testing.T, c *SQLCatalog, id string, rating float64, vector string) {
		t.Helper()
		_, err := c.db.ExecContext(ctx,
			`INSERT INTO product (id, rating, similarity_vector, created_ts) VALUES (?, ?, ?, ?)`,
			id, rating, vector, time.Now().UnixNano())
		require.NoError(t, err)
	}
	internal := func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		de := core.GetDomainError(err)
		require.NotNil(t, de)
		assert.Equal(t, core.ErrorCodeInternalError, de.Code)
	}

	t.Run("rating out of range", func(t *testing.T) {
		c := openTestSQL(t)
		insert(t, c, "p1", 9, "[]")
		_, err := c.FindByID(ctx, "p1")
		internal(t, err)
	})

	t.Run("mixed vector lengths", func(t *testing.T) {
		c := openTestSQL(t)
		insert(t, c, "p1", 4, "[1, 0]")
		insert(t, c, "p2", 4, "[1, 0, 0]")
		_, err := c.FindMany(ctx, core.ProductFilter{})
		internal(t, err)

		// 单条读取不做跨行比较
		p, err := c.FindByID(ctx, "p2")
		require.NoError(t, err)
		assert.Len(t, p.FeatureVector, 3)
	})

	t.Run("malformed vector", func(t *testing.T) {
		c := openTestSQL(t)
		insert(t, c, "p1", 4, "not json")
		_, err := c.FindByID(ctx, "p1")
		internal(t, err)
	})
}

package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/utils"
)

func TestProgram_Eval(t *testing.T) {
	item := core.NewProductItem(core.Product{
		ID:         "p1",
		Category:   "shoes",
		Rating:     4.5,
		IsFeatured: true,
	}, 0.8)
	item.PutLabel("recall_source", utils.Label{Value: "trending", Source: "recall"})
	rctx := &core.RecommendContext{UserID: "u1", Window: core.WindowDay}

	tests := []struct {
		expr string
		want bool
	}{
		{`product.rating >= 4.0 && product.is_featured`, true},
		{`product.category == "books"`, false},
		{`item.score > 0.5`, true},
		{`label.recall_source == "trending"`, true},
		{`rctx.window == "week"`, false},
		{`product.is_on_sale || product.rating > 4.4`, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			prg, err := Compile(tt.expr)
			require.NoError(t, err)
			got, err := prg.Eval(item, rctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_Empty(t *testing.T) {
	prg, err := Compile("")
	require.NoError(t, err)
	assert.Nil(t, prg)

	ok, err := prg.Eval(nil, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(`product.rating >=`)
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))
}

func TestProgram_NonBoolean(t *testing.T) {
	prg, err := Compile(`product.rating`)
	require.NoError(t, err)
	_, err = prg.Eval(core.NewProductItem(core.Product{ID: "p", Rating: 3}, 0), nil)
	assert.Error(t, err)
}

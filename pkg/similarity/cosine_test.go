package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/shoprec/core"
)

func TestCosine_SelfIsOne(t *testing.T) {
	for _, v := range [][]float64{
		{1, 2, 3},
		{-0.5, 0.25, 4},
		{1e-3, 0, 0},
	} {
		sim, err := Cosine(v, v)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, sim, 1e-12)
	}
}

func TestCosine_ZeroVectorIsZero(t *testing.T) {
	zero := []float64{0, 0, 0}
	for _, v := range [][]float64{{1, 2, 3}, {0, 0, 0}, {-1, 0, 5}} {
		sim, err := Cosine(v, zero)
		require.NoError(t, err)
		assert.Equal(t, 0.0, sim)

		sim, err = Cosine(zero, v)
		require.NoError(t, err)
		assert.Equal(t, 0.0, sim)
	}
}

func TestCosine_Symmetric(t *testing.T) {
	a := []float64{0.3, -1.2, 4, 0}
	b := []float64{2, 0.5, -0.1, 7}
	ab, err := Cosine(a, b)
	require.NoError(t, err)
	ba, err := Cosine(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
	assert.GreaterOrEqual(t, ab, -1.0)
	assert.LessOrEqual(t, ab, 1.0)
}

func TestCosine_Opposite(t *testing.T) {
	sim, err := Cosine([]float64{1, 2}, []float64{-1, -2})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, sim, 1e-12)
}

func TestCosine_LengthMismatch(t *testing.T) {
	_, err := Cosine([]float64{1, 2}, []float64{1, 2, 3})
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))
}

func TestCosineSparse_AlignsOnUnion(t *testing.T) {
	a := map[string]float64{"p1": 1, "p2": 1}
	b := map[string]float64{"p2": 1, "p3": 1}
	// 并集 [p1 p2 p3]: a=[1 1 0], b=[0 1 1] → 1/2
	assert.InDelta(t, 0.5, CosineSparse(a, b), 1e-12)
	assert.Equal(t, 0.0, CosineSparse(a, map[string]float64{}))
}

func TestWeightedSum(t *testing.T) {
	got, err := WeightedSum(2, [][]float64{{1, 0}, {0, 1}}, []float64{2, -1})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, -1}, got)

	_, err = WeightedSum(2, [][]float64{{1, 0, 0}}, []float64{1})
	assert.True(t, core.IsInvalidInput(err))
}

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVector(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []float64
		wantErr bool
	}{
		{name: "json array", in: "[0.1, 0.2, 3]", want: []float64{0.1, 0.2, 3}},
		{name: "surrounding whitespace", in: "  [1,2] ", want: []float64{1, 2}},
		{name: "empty string", in: "", want: nil},
		{name: "empty array", in: "[]", want: []float64{}},
		{name: "not json", in: "1,2,3", wantErr: true},
		{name: "non numeric element", in: `[1, "a"]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVector(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatVectorRoundTrip(t *testing.T) {
	v := []float64{0.5, -1, 2.25}
	s, err := FormatVector(v)
	require.NoError(t, err)
	got, err := ParseVector(s)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	s, err = FormatVector(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)
}

func TestFormatVectorNonFinite(t *testing.T) {
	for _, v := range [][]float64{{1, math.NaN()}, {math.Inf(1)}, {0, math.Inf(-1)}} {
		_, err := FormatVector(v)
		assert.Error(t, err, "%v", v)
	}
}

func TestToFloat64(t *testing.T) {
	f, ok := ToFloat64(int32(3))
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	f, ok = ToFloat64(true)
	assert.True(t, ok)
	assert.Equal(t, 1.0, f)

	_, ok = ToFloat64("3")
	assert.False(t, ok)
}

package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImputer_FitTransform(t *testing.T) {
	nan := math.NaN()
	frame, err := NewFrame(
		[]string{"odd", "even"},
		[][]float64{
			{1, 10},
			{5, 20},
			{3, nan},
			{nan, 40},
			{2, 30},
		},
	)
	require.NoError(t, err)

	im := NewImputer()
	require.NoError(t, im.FitTransform(frame))

	// Median of {1, 5, 3, 2} is the mean of the two middle values.
	assert.Equal(t, 2.5, im.Medians()["odd"])
	// Median of {10, 20, 40, 30} is 25.
	assert.Equal(t, 25.0, im.Medians()["even"])

	odd, _ := frame.Column("odd")
	even, _ := frame.Column("even")
	assert.Equal(t, 2.5, odd[3], "missing value should be replaced in place")
	assert.Equal(t, 25.0, even[2])
	for _, col := range [][]float64{odd, even} {
		for i, v := range col {
			assert.Falsef(t, math.IsNaN(v), "row %d still missing after imputation", i)
		}
	}
}

func TestImputer_OddCountMedian(t *testing.T) {
	nan := math.NaN()
	frame, err := NewFrame([]string{"x"}, [][]float64{{7}, {1}, {3}, {nan}})
	require.NoError(t, err)

	im := NewImputer()
	require.NoError(t, im.FitTransform(frame))
	assert.Equal(t, 3.0, im.Medians()["x"])
}

func TestImputer_CompleteColumnsUntouched(t *testing.T) {
	frame, err := NewFrame([]string{"x"}, [][]float64{{1}, {2}, {3}})
	require.NoError(t, err)

	im := NewImputer()
	require.NoError(t, im.FitTransform(frame))
	assert.Empty(t, im.Medians(), "columns without missing values need no fit parameter")
}

func TestImputer_AllMissingColumn(t *testing.T) {
	nan := math.NaN()
	frame, err := NewFrame([]string{"x"}, [][]float64{{nan}, {nan}})
	require.NoError(t, err)

	im := NewImputer()
	err = im.FitTransform(frame)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no observed values")
}

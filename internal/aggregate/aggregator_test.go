package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantileMatchesLinearInterpolation(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	assert.InDelta(t, 2.5, Median(values), 1e-12)
	assert.InDelta(t, 3.7, Quantile(values, 0.9), 1e-12)
	assert.InDelta(t, 1, Quantile(values, 0), 1e-12)
	assert.InDelta(t, 4, Quantile(values, 1), 1e-12)
}

func TestQuantileIgnoresNonFinite(t *testing.T) {
	values := []float64{math.NaN(), 1, math.Inf(1), 3, math.Inf(-1)}
	assert.InDelta(t, 2, Median(values), 1e-12)
	assert.True(t, math.IsNaN(Median(nil)))
	assert.True(t, math.IsNaN(Median([]float64{math.NaN()})))
}

func TestBinSeries(t *testing.T) {
	points := []Point{
		{BlockNumber: 12, Timestamp: 1800 + 60, Value: 5},
		{BlockNumber: 10, Timestamp: 10, Value: 2},
		{BlockNumber: 11, Timestamp: 20, Value: 4},
		{BlockNumber: 13, Timestamp: 1800 + 90, Value: 7},
		{BlockNumber: 14, Timestamp: 3*1800 + 1, Value: 1},
	}

	bins, err := BinSeries(points, 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, bins, 3)

	assert.Equal(t, uint64(0), bins[0].BinStart)
	assert.InDelta(t, 3, bins[0].Median, 1e-12)
	assert.InDelta(t, 2, bins[0].Min, 1e-12)
	assert.InDelta(t, 4, bins[0].Max, 1e-12)
	assert.Equal(t, uint64(10), bins[0].BlockMin)
	assert.Equal(t, uint64(11), bins[0].BlockMax)
	// median of 10 and 11 is 10.5, rounded half to even
	assert.Equal(t, uint64(10), bins[0].BlockMedian)
	assert.Equal(t, 2, bins[0].Count)

	assert.Equal(t, uint64(1800), bins[1].BinStart)
	assert.Equal(t, uint64(12), bins[1].BlockMedian)
	assert.Equal(t, uint64(5400), bins[2].BinStart)
}

func TestBinSeriesRejectsZeroWindow(t *testing.T) {
	_, err := BinSeries([]Point{{Timestamp: 1}}, 0)
	require.Error(t, err)
}

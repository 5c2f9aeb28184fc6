package aggregate

import (
	"math"
	"sort"
)

// Quantile returns the q-th quantile (0..1) with linear interpolation between closest ranks.
// NaN and infinite values are ignored; an empty input yields NaN.
func Quantile(values []float64, q float64) float64 {
	sorted := finiteSorted(values)
	if len(sorted) == 0 || math.IsNaN(q) {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Median is Quantile(values, 0.5).
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// Finite returns the values that are neither NaN nor infinite.
func Finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func finiteSorted(values []float64) []float64 {
	out := Finite(values)
	sort.Float64s(out)
	return out
}

func windowStart(ts uint64, windowSec uint64) uint64 {
	return ts - (ts % windowSec)
}

package liquidity

import (
	"fmt"
	"math"
	"sort"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// tickBase is the price ratio between adjacent ticks.
const tickBase = 1.0001

// Snap rounds tick to the nearest multiple of width, ties to even. A non-positive width
// returns tick unchanged.
func Snap(tick, width int32) int32 {
	if width <= 0 {
		return tick
	}
	return int32(math.RoundToEven(float64(tick)/float64(width))) * width
}

// SortRanges orders ranges by lower then upper tick.
func SortRanges(ranges []model.TickRange) []model.TickRange {
	out := append([]model.TickRange(nil), ranges...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TickLower != out[j].TickLower {
			return out[i].TickLower < out[j].TickLower
		}
		return out[i].TickUpper < out[j].TickUpper
	})
	return out
}

// Coverage counts, for each bin from Snap(min lower) to Snap(max upper), the ranges with
// TickLower <= bin < TickUpper.
func Coverage(ranges []model.TickRange, width int32) ([]model.CoverageBin, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("no active ranges")
	}
	if width <= 0 {
		return nil, fmt.Errorf("bin width must be positive, got %d", width)
	}
	lo, hi := ranges[0].TickLower, ranges[0].TickUpper
	for _, r := range ranges[1:] {
		if r.TickLower < lo {
			lo = r.TickLower
		}
		if r.TickUpper > hi {
			hi = r.TickUpper
		}
	}
	start, end := Snap(lo, width), Snap(hi, width)

	bins := make([]model.CoverageBin, 0, (end-start)/width+1)
	for t := start; t <= end; t += width {
		count := 0
		for _, r := range ranges {
			if r.Covers(t) {
				count++
			}
		}
		bins = append(bins, model.CoverageBin{Tick: t, Count: count})
	}
	return bins, nil
}

// EstimatedTick is round(ln(price) / ln(1.0001)) for a token1-per-token0 price.
func EstimatedTick(price float64) (int32, bool) {
	if !(price > 0) || math.IsInf(price, 0) {
		return 0, false
	}
	tick := math.Round(math.Log(price) / math.Log(tickBase))
	if tick > math.MaxInt32 || tick < math.MinInt32 {
		return 0, false
	}
	return int32(tick), true
}

// MaxCount is the largest bin count.
func MaxCount(bins []model.CoverageBin) int {
	max := 0
	for _, b := range bins {
		if b.Count > max {
			max = b.Count
		}
	}
	return max
}

package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// BinSeries groups points into fixed windows aligned to the unix epoch and summarises each
// non-empty window. Windows without observations are omitted.
func BinSeries(points []Point, window time.Duration) ([]model.ReserveBin, error) {
	windowSeconds := uint64(window / time.Second)
	if windowSeconds == 0 {
		return nil, fmt.Errorf("window must be at least one second")
	}
	if len(points) == 0 {
		return nil, nil
	}

	ordered := make([]Point, len(points))
	copy(ordered, points)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})

	bins := make([]model.ReserveBin, 0)
	var acc *Accumulator
	for _, point := range ordered {
		start := windowStart(point.Timestamp, windowSeconds)
		if acc == nil {
			acc = NewAccumulator(point, start, start+windowSeconds)
			continue
		}
		if acc.WindowStart != start {
			bins = append(bins, acc.Bin())
			acc = NewAccumulator(point, start, start+windowSeconds)
			continue
		}
		acc.Add(point)
	}
	if acc != nil {
		bins = append(bins, acc.Bin())
	}

	return bins, nil
}

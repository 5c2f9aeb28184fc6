package aggregate

import (
	"math"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// Point is one timestamped observation of a series.
type Point struct {
	BlockNumber uint64
	Timestamp   uint64
	Value       float64
}

// Accumulator holds the observations of one time window.
type Accumulator struct {
	WindowStart uint64
	WindowEnd   uint64
	values      []float64
	blocks      []float64
	blockMin    uint64
	blockMax    uint64
}

func NewAccumulator(point Point, windowStart, windowEnd uint64) *Accumulator {
	acc := &Accumulator{
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		blockMin:    point.BlockNumber,
		blockMax:    point.BlockNumber,
	}
	acc.Add(point)
	return acc
}

func (a *Accumulator) Add(point Point) {
	a.values = append(a.values, point.Value)
	a.blocks = append(a.blocks, float64(point.BlockNumber))
	if point.BlockNumber < a.blockMin {
		a.blockMin = point.BlockNumber
	}
	if point.BlockNumber > a.blockMax {
		a.blockMax = point.BlockNumber
	}
}

// Bin summarises the window. The block median is rounded half to even.
func (a *Accumulator) Bin() model.ReserveBin {
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, v := range a.values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	return model.ReserveBin{
		BinStart:    a.WindowStart,
		Median:      Median(a.values),
		Min:         minV,
		Max:         maxV,
		BlockMedian: uint64(math.RoundToEven(Median(a.blocks))),
		BlockMin:    a.blockMin,
		BlockMax:    a.blockMax,
		Count:       len(a.values),
	}
}

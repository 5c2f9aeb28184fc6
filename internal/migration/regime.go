package migration

import (
	"math"

	"github.com/Kuber-code/Arrakis-Assessment/internal/aggregate"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

const (
	ConfidenceMedium = "medium"
	ConfidenceWeak   = "weak"
)

// RegimeConfig bounds the change-point search in bins.
type RegimeConfig struct {
	MinHistory  int
	Persistence int
}

var DefaultRegimeConfig = RegimeConfig{MinHistory: 48, Persistence: 48}

// DetectRegimeChange finds the split with the largest level shift of the binned median reserve.
// The level before a split is the median of all earlier bins; the level after is the median of the
// next Persistence bins. A split is persistent when those bins sit closer to the new level than to
// the old one. Persistent splits win ("medium"); otherwise the largest shift is reported as "weak".
// Nil is returned when the series is too short.
func DetectRegimeChange(bins []model.ReserveBin, cfg RegimeConfig) *model.RegimeChange {
	if cfg.MinHistory <= 0 || cfg.Persistence <= 0 {
		cfg = DefaultRegimeConfig
	}
	medians := make([]float64, len(bins))
	for i, bin := range bins {
		medians[i] = bin.Median
	}

	var best, bestPersistent *model.RegimeChange
	for i := cfg.MinHistory; i < len(bins)-cfg.Persistence; i++ {
		beforeLevel := aggregate.Median(medians[:i])
		after := medians[i : i+cfg.Persistence]
		afterLevel := aggregate.Median(after)
		delta := afterLevel - beforeLevel

		toAfter := make([]float64, len(after))
		toBefore := make([]float64, len(after))
		for j, v := range after {
			toAfter[j] = math.Abs(v - afterLevel)
			toBefore[j] = math.Abs(v - beforeLevel)
		}
		persistence := aggregate.Median(toBefore) - aggregate.Median(toAfter)

		candidate := &model.RegimeChange{
			BinTimeUTC:    model.FormatUTC(bins[i].BinStart),
			BlockEstimate: bins[i].BlockMin,
			BeforeLevel:   beforeLevel,
			AfterLevel:    afterLevel,
			Delta:         delta,
			Persistence:   persistence,
		}
		if better(candidate, best) {
			best = candidate
		}
		if persistence > 0 && better(candidate, bestPersistent) {
			bestPersistent = candidate
		}
	}

	switch {
	case bestPersistent != nil:
		bestPersistent.Confidence = ConfidenceMedium
		return bestPersistent
	case best != nil:
		best.Confidence = ConfidenceWeak
		return best
	default:
		return nil
	}
}

// better prefers a larger absolute shift, then a larger persistence score, then the earlier split.
func better(candidate, current *model.RegimeChange) bool {
	if current == nil {
		return true
	}
	a, b := math.Abs(candidate.Delta), math.Abs(current.Delta)
	if a != b {
		return a > b
	}
	return candidate.Persistence > current.Persistence
}

package charts

import (
	"fmt"
	"sort"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// Slippage draws slippage over time for one canonical direction: one line per venue period
// and notional, colored by notional, solid for pre and dashed for post.
func Slippage(path, direction string, pre, post []model.SlippageObservation) error {
	venues := []struct {
		name   string
		obs    []model.SlippageObservation
		dashes []vg.Length
	}{
		{model.VenueUniV2Pre, pre, nil},
		{model.VenueUniV4Post, post, dashed},
	}

	sizes := make(map[float64]struct{})
	for _, v := range venues {
		for _, o := range v.obs {
			if model.CanonicalDirection(o.Direction) == direction {
				sizes[o.USDNotionalIn] = struct{}{}
			}
		}
	}
	if len(sizes) == 0 {
		return fmt.Errorf("%w: direction %s", ErrNoData, direction)
	}
	ordered := make([]float64, 0, len(sizes))
	for s := range sizes {
		ordered = append(ordered, s)
	}
	sort.Float64s(ordered)

	p := newPlot(fmt.Sprintf("Slippage over time (%s)", direction), "", "Slippage excl. fees (%)")
	timeAxis(p)
	for _, v := range venues {
		for i, size := range ordered {
			rows := make([]model.SlippageObservation, 0)
			for _, o := range v.obs {
				if o.USDNotionalIn == size && model.CanonicalDirection(o.Direction) == direction {
					rows = append(rows, o)
				}
			}
			sort.SliceStable(rows, func(a, b int) bool { return rows[a].Timestamp < rows[b].Timestamp })
			xys := make(plotter.XYs, 0, len(rows))
			for _, o := range rows {
				if finite(o.SlippagePct) {
					xys = append(xys, plotter.XY{X: float64(o.Timestamp), Y: o.SlippagePct})
				}
			}
			label := fmt.Sprintf("%s $%.0f", v.name, size)
			if _, err := addLine(p, label, xys, palette(i), v.dashes, vg.Points(1.2)); err != nil {
				return err
			}
		}
	}
	return save(path, p)
}

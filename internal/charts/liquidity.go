package charts

import (
	"fmt"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// ActiveRanges draws each position as a horizontal segment from tickLower to tickUpper.
func ActiveRanges(path string, snap model.LiquiditySnapshot, marker *int32) error {
	if len(snap.Ranges) == 0 {
		return fmt.Errorf("%w: no ranges", ErrNoData)
	}
	p := newPlot(fmt.Sprintf("Vault active ranges (%s/%s)", snap.Token0.Symbol, snap.Token1.Symbol), "Tick", "Range")
	for i, r := range snap.Ranges {
		xys := plotter.XYs{{X: float64(r.TickLower), Y: float64(i + 1)}, {X: float64(r.TickUpper), Y: float64(i + 1)}}
		label := ""
		if i == 0 {
			label = "Active range"
		}
		if _, err := addLine(p, label, xys, palette(0), nil, vg.Points(4)); err != nil {
			return err
		}
	}
	if marker != nil {
		xys := plotter.XYs{{X: float64(*marker), Y: 0}, {X: float64(*marker), Y: float64(len(snap.Ranges) + 1)}}
		if _, err := addLine(p, "Estimated current tick", xys, gray, dashed, vg.Points(1.4)); err != nil {
			return err
		}
	}
	p.Y.Min, p.Y.Max = 0, float64(len(snap.Ranges)+1)
	return save(path, p)
}

// Coverage draws range counts per tick bin against a full-range baseline of one.
func Coverage(path string, bins []model.CoverageBin, marker *int32) error {
	if len(bins) == 0 {
		return fmt.Errorf("%w: no coverage bins", ErrNoData)
	}
	p := newPlot("UniV4 liquidity distribution (coverage across tick bins)", "Tick (binned)", "Active ranges overlapping bin")

	xys := make(plotter.XYs, len(bins))
	top := 1
	for i, b := range bins {
		xys[i] = plotter.XY{X: float64(b.Tick), Y: float64(b.Count)}
		if b.Count > top {
			top = b.Count
		}
	}
	if _, err := addLine(p, "Active range coverage (count)", xys, palette(0), nil, vg.Points(2)); err != nil {
		return err
	}

	lo, hi := float64(bins[0].Tick), float64(bins[len(bins)-1].Tick)
	baseline := plotter.XYs{{X: lo, Y: 1}, {X: hi, Y: 1}}
	if _, err := addLine(p, "Full-range baseline", baseline, gray, dotted, vg.Points(1.6)); err != nil {
		return err
	}
	if marker != nil {
		xys := plotter.XYs{{X: float64(*marker), Y: 0}, {X: float64(*marker), Y: float64(top) + 0.5}}
		if _, err := addLine(p, "Estimated current tick", xys, gray, dashed, vg.Points(1.4)); err != nil {
			return err
		}
	}
	p.Y.Min = 0
	return save(path, p)
}

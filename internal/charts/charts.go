// Package charts renders the pipeline's PNG figures with gonum/plot.
package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no data to plot")

const (
	width  = 12 * vg.Inch
	height = 6 * vg.Inch
)

var (
	gray   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	dashed = []vg.Length{vg.Points(6), vg.Points(4)}
	dotted = []vg.Length{vg.Points(2), vg.Points(3)}
)

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())
	return p
}

func timeAxis(p *plot.Plot) {
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.X.Label.Text = "Time (UTC)"
}

// series keeps the finite points of xs/ys.
func series(xs, ys []float64) plotter.XYs {
	out := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if finite(xs[i]) && finite(ys[i]) {
			out = append(out, plotter.XY{X: xs[i], Y: ys[i]})
		}
	}
	return out
}

// addLine adds a styled line with a legend entry; empty series are skipped.
func addLine(p *plot.Plot, label string, xys plotter.XYs, c color.Color, dashes []vg.Length, w vg.Length) (*plotter.Line, error) {
	if len(xys) == 0 {
		return nil, nil
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("line %q: %w", label, err)
	}
	line.LineStyle = draw.LineStyle{Color: c, Width: w, Dashes: dashes}
	p.Add(line)
	if label != "" {
		p.Legend.Add(label, line)
	}
	return line, nil
}

// palette cycles through plotutil's default colors.
func palette(i int) color.Color {
	return plotutil.Color(i)
}

func save(path string, p *plot.Plot) error {
	to, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	return storage.WriteFile(path, func(w io.Writer) error {
		_, err := to.WriteTo(w)
		return err
	})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package charts

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

func vaultColumns(samples []model.VaultSample, pick func(model.VaultSample) float64) ([]float64, []float64) {
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = float64(s.Timestamp)
		ys[i] = pick(s)
	}
	return xs, ys
}

func baseSymbol(samples []model.VaultSample) string {
	if len(samples) > 0 && samples[0].BaseSymbol != "" {
		return samples[0].BaseSymbol
	}
	return "base"
}

// VaultAmounts draws the ETH and base token amounts in two stacked panels.
func VaultAmounts(path string, samples []model.VaultSample) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: no vault samples", ErrNoData)
	}
	symbol := baseSymbol(samples)

	top := newPlot("Arrakis vault underlying amounts over time", "", "ETH")
	timeAxis(top)
	xs, ys := vaultColumns(samples, func(s model.VaultSample) float64 { return s.AmtETH })
	if _, err := addLine(top, "ETH amount", series(xs, ys), palette(0), nil, vg.Points(1.8)); err != nil {
		return err
	}

	bottom := newPlot("", "", symbol)
	timeAxis(bottom)
	xs, ys = vaultColumns(samples, func(s model.VaultSample) float64 { return s.AmtBase })
	if _, err := addLine(bottom, symbol+" amount", series(xs, ys), palette(1), nil, vg.Points(1.8)); err != nil {
		return err
	}

	plots := [][]*plot.Plot{{top}, {bottom}}
	img := vgimg.New(width, height*3/2)
	canvases := plot.Align(plots, draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Millimeter * 4}, draw.New(img))
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}
	return storage.WriteFile(path, func(w io.Writer) error {
		_, err := vgimg.PngCanvas{Canvas: img}.WriteTo(w)
		return err
	})
}

// VaultValue draws the USD value composition as stacked areas: ETH at the bottom and the base
// token on top of it.
func VaultValue(path string, samples []model.VaultSample) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: no vault samples", ErrNoData)
	}
	symbol := baseSymbol(samples)
	p := newPlot("Vault composition over time (USD value)", "", "USD value")
	timeAxis(p)

	xs, total := vaultColumns(samples, func(s model.VaultSample) float64 { return s.ValueETHUSD + s.ValueBaseUSD })
	_, ethValue := vaultColumns(samples, func(s model.VaultSample) float64 { return s.ValueETHUSD })

	upper, err := addLine(p, symbol+" value (USD)", series(xs, total), palette(1), nil, vg.Points(1))
	if err != nil {
		return err
	}
	if upper != nil {
		upper.FillColor = withAlpha(palette(1), 200)
	}
	lower, err := addLine(p, "ETH value (USD)", series(xs, ethValue), palette(0), nil, vg.Points(1))
	if err != nil {
		return err
	}
	if lower != nil {
		lower.FillColor = withAlpha(palette(0), 220)
	}
	p.Y.Min = 0
	return save(path, p)
}

// VaultIndices draws the vault, hold and full-range indices; the full-range line is omitted
// when it is undefined.
func VaultIndices(path string, samples []model.VaultSample) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: no vault samples", ErrNoData)
	}
	p := newPlot("Vault performance vs hold and full-range LP baseline (indexed)", "", "Value index (t0 = 1.0)")
	timeAxis(p)

	lines := []struct {
		label string
		pick  func(model.VaultSample) float64
		width vg.Length
	}{
		{"Vault (index)", func(s model.VaultSample) float64 { return s.VaultIndex }, vg.Points(2.2)},
		{"Hold initial amounts (index)", func(s model.VaultSample) float64 { return s.HoldIndex }, vg.Points(1.8)},
		{"Full-range LP, no fees (index)", func(s model.VaultSample) float64 { return s.FullRangeIndex }, vg.Points(1.8)},
	}
	for i, l := range lines {
		xs, ys := vaultColumns(samples, l.pick)
		if _, err := addLine(p, l.label, series(xs, ys), palette(i), nil, l.width); err != nil {
			return err
		}
	}
	return save(path, p)
}

func withAlpha(c color.Color, alpha uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}

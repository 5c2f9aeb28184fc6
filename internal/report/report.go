// Package report renders the markdown reports from stage artifacts.
package report

import (
	"embed"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/template"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("report").Funcs(template.FuncMap{
	"num":     formatNumber,
	"usd":     formatUSD,
	"percent": formatPercent,
	"change":  formatChange,
	"ref":     formatRef,
}).ParseFS(templateFS, "templates/*.tmpl"))

// Coverage is the liquidity section of the execution report.
type Coverage struct {
	Snapshot       model.LiquiditySnapshot
	Bins           int
	MaxCount       int
	Marker         string
	RangesFigure   string
	CoverageFigure string
}

// Execution is the input of execution_quality.md.
type Execution struct {
	GeneratedAt     string
	PairLabel       string
	Migration       model.MigrationRecord
	Comparisons     []model.SlippageComparison
	SlippageFigures []string
	Liquidity       *Coverage
}

// Vault is the input of vault_performance.md.
type Vault struct {
	GeneratedAt string
	Vault       string
	Summary     model.VaultSummary
	Figures     []string
}

func RenderExecution(w io.Writer, data Execution) error {
	return render(w, "execution_quality.md.tmpl", data)
}

func RenderVault(w io.Writer, data Vault) error {
	return render(w, "vault_performance.md.tmpl", data)
}

func render(w io.Writer, name string, data interface{}) error {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatUSD(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return "$" + strconv.FormatFloat(v, 'f', 0, 64)
}

func formatPercent(fraction float64) string {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(fraction*100, 'f', 1, 64) + "%"
}

// formatChange renders a relative change rounded to 0.1 percentage points.
func formatChange(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", pct)
}

func formatRef(ref model.EventRef) string {
	if ref.Event == "" {
		return "n/a"
	}
	out := fmt.Sprintf("%s at block %d, tx `%s` log %d", ref.Event, ref.BlockNumber, ref.TxHash, ref.LogIndex)
	if ref.Amount != "" {
		out += ", amount " + ref.Amount
	}
	return out
}

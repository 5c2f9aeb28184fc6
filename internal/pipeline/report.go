package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/liquidity"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/report"
	"github.com/Kuber-code/Arrakis-Assessment/internal/slippage"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
	"github.com/Kuber-code/Arrakis-Assessment/internal/vault"
)

// Report renders both markdown reports. The liquidity section is included only when the
// liquidity stage has run.
func (p *Pipeline) Report(_ context.Context) error {
	record, err := p.readRecord()
	if err != nil {
		return err
	}
	meta, err := p.readMeta()
	if err != nil {
		return err
	}
	table, err := storage.ReadCSV(p.layout.Processed(storage.ExecutionComparison))
	if err != nil {
		return err
	}
	comparisons, err := slippage.ReadComparisons(table)
	if err != nil {
		return err
	}
	coverage, err := p.readCoverage()
	if err != nil {
		return err
	}

	directions := make([]string, 0)
	seen := make(map[string]bool)
	for _, c := range comparisons {
		if !seen[c.Direction] {
			seen[c.Direction] = true
			directions = append(directions, c.Direction)
		}
	}
	figures := make([]string, 0, len(directions))
	for _, direction := range directions {
		name := slippage.FigureName(storage.FigureSlippagePrefix, direction)
		if p.exists(p.layout.Figure(name)) {
			figures = append(figures, name)
		}
	}

	base, quote, _, err := meta.Split(p.cfg.Addresses.WETH)
	if err != nil {
		return err
	}
	execution := report.Execution{
		GeneratedAt:     p.stamp(),
		PairLabel:       base.Symbol + "/" + quote.Symbol,
		Migration:       record,
		Comparisons:     comparisons,
		SlippageFigures: figures,
		Liquidity:       coverage,
	}
	if err := storage.WriteFile(p.layout.Report(storage.ExecutionReport), func(w io.Writer) error {
		return report.RenderExecution(w, execution)
	}); err != nil {
		return err
	}

	summaryTable, err := storage.ReadCSV(p.layout.Processed(storage.VaultSummary))
	if err != nil {
		return err
	}
	summary, err := vault.ReadSummary(summaryTable)
	if err != nil {
		return err
	}
	vaultFigures := make([]string, 0, len(VaultFigures))
	for _, name := range VaultFigures {
		if p.exists(p.layout.Figure(name)) {
			vaultFigures = append(vaultFigures, name)
		}
	}
	vaultReport := report.Vault{
		GeneratedAt: p.stamp(),
		Vault:       p.cfg.Addresses.Vault,
		Summary:     summary,
		Figures:     vaultFigures,
	}
	if err := storage.WriteFile(p.layout.Report(storage.VaultReport), func(w io.Writer) error {
		return report.RenderVault(w, vaultReport)
	}); err != nil {
		return err
	}
	p.logger.Info("reports written",
		zap.String("execution", p.layout.Report(storage.ExecutionReport)),
		zap.String("vault", p.layout.Report(storage.VaultReport)),
		zap.Bool("liquidity_section", coverage != nil),
	)
	return nil
}

// readCoverage loads the liquidity snapshot and its coverage table. Both missing gives nil.
func (p *Pipeline) readCoverage() (*report.Coverage, error) {
	var snap model.LiquiditySnapshot
	if err := storage.ReadJSON(p.layout.Raw(storage.LiquiditySnapshot), &snap); err != nil {
		if errors.Is(err, ErrMissingArtifact) {
			return nil, nil
		}
		return nil, err
	}
	table, err := storage.ReadCSV(p.layout.Processed(storage.RangeCoverage))
	if err != nil {
		if errors.Is(err, ErrMissingArtifact) {
			return nil, nil
		}
		return nil, err
	}
	bins, err := liquidity.ReadCoverage(table)
	if err != nil {
		return nil, err
	}
	marker := "n/a"
	if tick, ok := liquidity.Marker(snap); ok {
		marker = strconv.FormatInt(int64(tick), 10)
	}
	return &report.Coverage{
		Snapshot:       snap,
		Bins:           len(bins),
		MaxCount:       liquidity.MaxCount(bins),
		Marker:         marker,
		RangesFigure:   storage.FigureActiveRanges,
		CoverageFigure: storage.FigureCoverage,
	}, nil
}

func (p *Pipeline) exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/charts"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
	"github.com/Kuber-code/Arrakis-Assessment/internal/vault"
)

// Vault reconstructs the vault's holdings at strided blocks from the migration block.
func (p *Pipeline) Vault(ctx context.Context) error {
	meta, err := p.readMeta()
	if err != nil {
		return err
	}
	record, err := p.readRecord()
	if err != nil {
		return err
	}
	dest, err := p.resolvePool(ctx, meta)
	if err != nil {
		return err
	}
	oracle, err := p.ethUSD(ctx)
	if err != nil {
		return err
	}
	quoter, err := p.quoter()
	if err != nil {
		return err
	}

	sampler, err := vault.NewSampler(p.client, oracle, dest.vault, quoter, dest.key, dest.base, dest.eth, vault.Config{
		MigrationBlock: record.Selected.MigrationBlock,
		ToBlock:        p.cfg.Locate.ToBlock,
		Stride:         p.cfg.VaultStride,
	}, p.logger)
	if err != nil {
		return err
	}
	samples, stats, err := sampler.Sample(ctx)
	if err != nil {
		return err
	}
	p.logger.Info("vault series",
		zap.Int("blocks", stats.Blocks),
		zap.Int("samples", stats.Samples),
		zap.Int("dropped", stats.Dropped),
		zap.Int("ambiguous", stats.Ambiguous),
		zap.Int("flips", stats.Flips),
	)
	return storage.WriteCSV(p.layout.Processed(storage.VaultTimeseries), vault.SampleTable(samples))
}

func (p *Pipeline) readSamples() ([]model.VaultSample, error) {
	table, err := storage.ReadCSV(p.layout.Processed(storage.VaultTimeseries))
	if err != nil {
		return nil, err
	}
	return vault.ReadSamples(table)
}

// VaultFigures lists the figures written by VaultReport in report order.
var VaultFigures = []string{storage.FigureVaultAmounts, storage.FigureVaultValue, storage.FigureVaultIndices}

// VaultReport summarizes the vault series and draws its three figures.
func (p *Pipeline) VaultReport(_ context.Context) error {
	samples, err := p.readSamples()
	if err != nil {
		return err
	}
	summary, err := vault.Summarize(samples)
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(p.layout.Processed(storage.VaultSummary), vault.SummaryTable(summary)); err != nil {
		return err
	}

	draw := []func(string, []model.VaultSample) error{charts.VaultAmounts, charts.VaultValue, charts.VaultIndices}
	for i, render := range draw {
		if err := render(p.layout.Figure(VaultFigures[i]), samples); err != nil {
			return err
		}
	}
	p.logger.Info("vault summary",
		zap.String("t0", summary.T0DatetimeUTC),
		zap.String("t1", summary.T1DatetimeUTC),
		zap.Float64("vault_index", summary.VaultIndexT1),
		zap.Float64("hold_index", summary.HoldIndexT1),
		zap.Float64("full_range_index", summary.FullRangeIndexT1),
		zap.String("mapping", summary.MappingMode),
	)
	return nil
}

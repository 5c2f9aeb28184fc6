package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/charts"
	"github.com/Kuber-code/Arrakis-Assessment/internal/liquidity"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

// Liquidity snapshots the module's ranges at the latest block and renders the coverage.
func (p *Pipeline) Liquidity(ctx context.Context) error {
	vault, module, err := p.vaultModule(ctx)
	if err != nil {
		return err
	}
	quoter, err := p.quoter()
	if err != nil {
		return err
	}
	block, err := p.client.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("latest block: %w", err)
	}

	snap, err := liquidity.NewSnapshotter(module, quoter, p.client, p.tokens, p.logger).
		Take(ctx, vault.Address(), block, int32(p.cfg.BinWidth))
	if err != nil {
		return err
	}
	if err := storage.WriteJSON(p.layout.Raw(storage.LiquiditySnapshot), snap); err != nil {
		return err
	}
	return p.renderCoverage(snap)
}

func (p *Pipeline) renderCoverage(snap model.LiquiditySnapshot) error {
	bins, err := liquidity.Coverage(snap.Ranges, snap.BinWidth)
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(p.layout.Processed(storage.ActiveRanges), liquidity.RangeTable(snap.Ranges)); err != nil {
		return err
	}
	if err := storage.WriteCSV(p.layout.Processed(storage.RangeCoverage), liquidity.CoverageTable(bins)); err != nil {
		return err
	}

	var marker *int32
	if tick, ok := liquidity.Marker(snap); ok {
		marker = &tick
	}
	if err := charts.ActiveRanges(p.layout.Figure(storage.FigureActiveRanges), snap, marker); err != nil {
		return err
	}
	if err := charts.Coverage(p.layout.Figure(storage.FigureCoverage), bins, marker); err != nil {
		return err
	}
	p.logger.Info("liquidity coverage",
		zap.Uint64("block", snap.BlockNumber),
		zap.Int("ranges", len(snap.Ranges)),
		zap.Int("bins", len(bins)),
		zap.Int("max_count", liquidity.MaxCount(bins)),
	)
	return nil
}

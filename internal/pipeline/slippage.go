package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/charts"
	"github.com/Kuber-code/Arrakis-Assessment/internal/migration"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/slippage"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

// SlippagePre replays the source pair's reserves before the migration block.
func (p *Pipeline) SlippagePre(ctx context.Context) error {
	table, err := storage.ReadCSV(p.layout.Processed(storage.SyncTimeseries))
	if err != nil {
		return err
	}
	points, err := migration.ReadSyncTable(table)
	if err != nil {
		return err
	}
	meta, err := p.readMeta()
	if err != nil {
		return err
	}
	record, err := p.readRecord()
	if err != nil {
		return err
	}
	ethTable, err := storage.ReadCSV(p.layout.Processed(storage.EthUSDSeries))
	if err != nil {
		return err
	}
	ethUSD, err := slippage.ReadEthUSD(ethTable)
	if err != nil {
		return err
	}

	observations, stats, err := slippage.SamplePre(points, ethUSD, meta, slippage.PreConfig{
		MigrationBlock: record.Selected.MigrationBlock,
		Sizes:          p.cfg.Slippage.Sizes,
		MaxPoints:      p.cfg.Slippage.MaxPoints,
		WETH:           p.cfg.Addresses.WETH,
	}, p.logger)
	if err != nil {
		return err
	}
	p.logger.Info("pre-migration slippage",
		zap.Int("blocks", stats.Blocks),
		zap.Int("observations", stats.Observations),
		zap.Int("dropped", stats.Dropped),
	)
	return storage.WriteCSV(p.layout.Processed(storage.SlippagePre), slippage.ObservationTable(observations, false))
}

// SlippagePost quotes the destination pool at strided blocks from the migration block.
func (p *Pipeline) SlippagePost(ctx context.Context) error {
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

	sampler, err := slippage.NewPostSampler(p.client, oracle, quoter, dest.key, dest.base, dest.eth, slippage.PostConfig{
		MigrationBlock: record.Selected.MigrationBlock,
		ToBlock:        p.cfg.Locate.ToBlock,
		Stride:         p.cfg.Slippage.Stride,
		Sizes:          p.cfg.Slippage.Sizes,
	}, p.logger)
	if err != nil {
		return err
	}
	observations, stats, err := sampler.Sample(ctx)
	if err != nil {
		return err
	}
	p.logger.Info("post-migration slippage",
		zap.Int("blocks", stats.Blocks),
		zap.Int("observations", stats.Observations),
		zap.Int("dropped", stats.Dropped),
	)
	return storage.WriteCSV(p.layout.Processed(storage.SlippagePost), slippage.ObservationTable(observations, true))
}

func (p *Pipeline) readObservations(name string) ([]model.SlippageObservation, error) {
	table, err := storage.ReadCSV(p.layout.Processed(name))
	if err != nil {
		return nil, err
	}
	return slippage.ReadObservations(table)
}

// ExecutionQuality aggregates both slippage samples, compares them and draws one figure per
// canonical direction.
func (p *Pipeline) ExecutionQuality(_ context.Context) error {
	pre, err := p.readObservations(storage.SlippagePre)
	if err != nil {
		return err
	}
	post, err := p.readObservations(storage.SlippagePost)
	if err != nil {
		return err
	}

	summaries := slippage.Summarize(map[string][]model.SlippageObservation{
		model.VenueUniV2Pre:  pre,
		model.VenueUniV4Post: post,
	})
	if len(summaries) == 0 {
		return fmt.Errorf("no finite slippage observations")
	}
	comparisons := slippage.Compare(summaries)
	if err := storage.WriteCSV(p.layout.Processed(storage.ExecutionSummary), slippage.SummaryTable(summaries)); err != nil {
		return err
	}
	if err := storage.WriteCSV(p.layout.Processed(storage.ExecutionComparison), slippage.ComparisonTable(comparisons)); err != nil {
		return err
	}

	for _, direction := range slippage.Directions(pre, post) {
		path := p.layout.Figure(slippage.FigureName(storage.FigureSlippagePrefix, direction))
		if err := charts.Slippage(path, direction, pre, post); err != nil {
			if errors.Is(err, charts.ErrNoData) {
				p.logger.Warn("slippage figure skipped", zap.String("direction", direction), zap.Error(err))
				continue
			}
			return err
		}
	}
	p.logger.Info("execution quality", zap.Int("summaries", len(summaries)), zap.Int("comparisons", len(comparisons)))
	return nil
}

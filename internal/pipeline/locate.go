package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/dex"
	"github.com/Kuber-code/Arrakis-Assessment/internal/migration"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/scan"
	"github.com/Kuber-code/Arrakis-Assessment/internal/slippage"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

// Locate finds the migration block and writes the record with its supporting series. When no
// block qualifies the reserve series is still written and ErrNoMigration is returned.
func (p *Pipeline) Locate(ctx context.Context) error {
	meta, err := p.readMeta()
	if err != nil {
		return err
	}
	pair, err := scan.ParseAddress("pair", p.cfg.Addresses.Pair)
	if err != nil {
		return err
	}
	manager, err := scan.ParseAddress("pool-manager", p.cfg.Addresses.PoolManager)
	if err != nil {
		return err
	}
	poolID, err := p.poolID(ctx)
	if err != nil {
		return err
	}

	lc := p.cfg.Locate
	locator, err := migration.NewLocator(p.client, migration.Config{
		Pair:        pair,
		PoolManager: manager,
		PoolID:      poolID,
		WETH:        p.cfg.Addresses.WETH,
		FromBlock:   lc.FromBlock,
		ToBlock:     lc.ToBlock,
		Lookback:    lc.Lookback,
		Fetch:       scan.FetchConfig{BatchSize: lc.BatchSize, MinSplit: lc.MinSplit},
		Rule:        migration.Rule{DropThreshold: lc.DropThreshold, ConfirmWindow: lc.ConfirmWindow},
		BinInterval: lc.BinInterval,
		Regime:      migration.DefaultRegimeConfig,
	}, p.logger)
	if err != nil {
		return err
	}
	locator.WithEventSink(storage.NewJsonlStorage(p.layout.Raw(storage.MigrationEvents)))

	result, locateErr := locator.Locate(ctx, meta)
	if locateErr != nil && !errors.Is(locateErr, ErrNoMigration) {
		return locateErr
	}
	if err := storage.WriteCSV(p.layout.Processed(storage.SyncTimeseries), migration.SyncTable(result.Series)); err != nil {
		return err
	}
	if err := storage.WriteCSV(p.layout.Processed(storage.ReserveBins), migration.BinTable(result.Bins)); err != nil {
		return err
	}
	if err := storage.WriteJSON(p.layout.Processed(storage.RegimeChange), result.Regime); err != nil {
		return err
	}
	if locateErr != nil {
		return locateErr
	}

	if err := storage.WriteCSV(p.layout.Processed(storage.ConfirmBurns), migration.BurnTable(result.Confirm.Burns, meta)); err != nil {
		return err
	}
	if err := storage.WriteCSV(p.layout.Processed(storage.ConfirmSwaps), migration.SwapTable(result.Confirm.Swaps, meta)); err != nil {
		return err
	}
	if err := storage.WriteJSON(p.layout.Processed(storage.ConfirmSummary), result.Confirm.Summary); err != nil {
		return err
	}
	p.logger.Info("migration record",
		zap.Uint64("block", result.Record.Selected.MigrationBlock),
		zap.String("time", result.Record.Selected.MigrationTimeUTC),
		zap.Int("confirm_burns", len(result.Confirm.Burns)),
		zap.Int("confirm_swaps", len(result.Confirm.Swaps)),
	)
	return storage.WriteJSON(p.layout.Raw(storage.MigrationRecord), result.Record)
}

// poolID returns the configured destination pool id, or derives it from the vault module's
// pool key.
func (p *Pipeline) poolID(ctx context.Context) (common.Hash, error) {
	if p.cfg.Locate.PoolID != "" {
		return scan.ParseHash("pool-id", p.cfg.Locate.PoolID)
	}
	_, module, err := p.vaultModule(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("derive pool id: %w", err)
	}
	key, err := module.PoolKey(ctx, 0)
	if err != nil {
		return common.Hash{}, fmt.Errorf("derive pool id: %w", err)
	}
	id, err := dex.PoolID(key)
	if err != nil {
		return common.Hash{}, err
	}
	p.logger.Info("pool id derived", zap.String("pool_key", key.String()), zap.String("pool_id", id.Hex()))
	return id, nil
}

// EthUSD prices ETH in USD at the median block of every reserve bin.
func (p *Pipeline) EthUSD(ctx context.Context) error {
	table, err := storage.ReadCSV(p.layout.Processed(storage.ReserveBins))
	if err != nil {
		return err
	}
	blocks, err := migration.BinBlocks(table)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		return fmt.Errorf("binned reserves hold no blocks")
	}
	oracle, err := p.ethUSD(ctx)
	if err != nil {
		return err
	}

	points := make([]model.EthUSDPoint, 0, len(blocks))
	for _, block := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		point, err := oracle.At(ctx, block)
		if err != nil {
			p.logger.Warn("eth/usd read failed", zap.Uint64("block", block), zap.Error(err))
			continue
		}
		ts, err := p.client.BlockTimestamp(ctx, block)
		if err != nil {
			p.logger.Warn("block timestamp failed", zap.Uint64("block", block), zap.Error(err))
			continue
		}
		point.Timestamp = ts
		point.DatetimeUTC = model.FormatUTC(ts)
		points = append(points, point)
	}
	if len(points) == 0 {
		return fmt.Errorf("no eth/usd price read for %d blocks", len(blocks))
	}
	p.logger.Info("eth/usd series", zap.Int("blocks", len(blocks)), zap.Int("points", len(points)))
	return storage.WriteCSV(p.layout.Processed(storage.EthUSDSeries), slippage.EthUSDTable(points))
}

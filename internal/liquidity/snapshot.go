package liquidity

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/dex"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/pricing"
)

// ModuleReader is the part of the Arrakis module the snapshot reads.
type ModuleReader interface {
	Address() common.Address
	PoolKey(ctx context.Context, block uint64) (model.PoolKey, error)
	Ranges(ctx context.Context, block uint64) ([]model.TickRange, error)
}

// Snapshotter reads the vault module's positions at one block.
type Snapshotter struct {
	module ModuleReader
	quoter pricing.Quoter
	caller dex.ContractCaller
	tokens *dex.TokenMetaCache
	logger *zap.Logger
}

func NewSnapshotter(module ModuleReader, quoter pricing.Quoter, caller dex.ContractCaller, tokens *dex.TokenMetaCache, logger *zap.Logger) *Snapshotter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokens == nil {
		tokens = dex.NewTokenMetaCache()
	}
	return &Snapshotter{module: module, quoter: quoter, caller: caller, tokens: tokens, logger: logger}
}

// Take reads the pool key and ranges at block. binWidth <= 0 selects the pool tick spacing.
// A failed micro-quote leaves the estimated tick unset.
func (s *Snapshotter) Take(ctx context.Context, vault common.Address, block uint64, binWidth int32) (model.LiquiditySnapshot, error) {
	key, err := s.module.PoolKey(ctx, block)
	if err != nil {
		return model.LiquiditySnapshot{}, fmt.Errorf("pool key: %w", err)
	}
	ranges, err := s.module.Ranges(ctx, block)
	if err != nil {
		return model.LiquiditySnapshot{}, fmt.Errorf("ranges: %w", err)
	}
	if len(ranges) == 0 {
		return model.LiquiditySnapshot{}, fmt.Errorf("module %s returned no ranges", s.module.Address().Hex())
	}
	token0, err := s.tokens.Fetch(ctx, s.caller, common.HexToAddress(key.Currency0), s.logger)
	if err != nil {
		return model.LiquiditySnapshot{}, fmt.Errorf("currency0 metadata: %w", err)
	}
	token1, err := s.tokens.Fetch(ctx, s.caller, common.HexToAddress(key.Currency1), s.logger)
	if err != nil {
		return model.LiquiditySnapshot{}, fmt.Errorf("currency1 metadata: %w", err)
	}
	if binWidth <= 0 {
		binWidth = key.TickSpacing
	}

	snap := model.LiquiditySnapshot{
		RunID:       uuid.NewString(),
		BlockNumber: block,
		Vault:       vault.Hex(),
		Module:      s.module.Address().Hex(),
		PoolKey:     key,
		Token0:      token0,
		Token1:      token1,
		Ranges:      SortRanges(ranges),
		BinWidth:    binWidth,
	}

	spot, err := pricing.SpotFromQuote(ctx, s.quoter, key, token0, token1, pricing.Currency0Amount, block)
	if err != nil {
		s.logger.Warn("spot micro-quote failed, no current tick marker", zap.Uint64("block", block), zap.Error(err))
		return snap, nil
	}
	snap.SpotToken1PerToken0 = spot
	if tick, ok := EstimatedTick(spot); ok {
		snapped := Snap(tick, key.TickSpacing)
		snap.EstimatedTick = &tick
		snap.EstimatedTickSnapped = &snapped
	}

	s.logger.Info("liquidity snapshot",
		zap.Uint64("block", block),
		zap.String("pool_key", key.String()),
		zap.Int("ranges", len(ranges)),
		zap.Int32("bin_width", binWidth),
	)
	return snap, nil
}

// Marker returns the tick to draw as the current price, preferring the snapped estimate.
func Marker(snap model.LiquiditySnapshot) (int32, bool) {
	switch {
	case snap.EstimatedTickSnapped != nil:
		return *snap.EstimatedTickSnapped, true
	case snap.EstimatedTick != nil:
		return *snap.EstimatedTick, true
	default:
		return 0, false
	}
}

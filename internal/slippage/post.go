package slippage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/pricing"
	"github.com/Kuber-code/Arrakis-Assessment/internal/scan"
)

// Chain is the block information the online samplers need.
type Chain interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// PriceSource returns ETH/USD at a block.
type PriceSource interface {
	At(ctx context.Context, block uint64) (model.EthUSDPoint, error)
}

// PostConfig controls the online UniV4 sampler. A zero ToBlock means latest.
type PostConfig struct {
	MigrationBlock uint64
	ToBlock        uint64
	Stride         uint64
	Sizes          []float64
}

// PostSampler quotes trades through the UniV4 pool at strided blocks after the migration.
type PostSampler struct {
	chain  Chain
	prices PriceSource
	quoter pricing.Quoter
	key    model.PoolKey
	base   model.TokenMeta
	eth    model.TokenMeta
	cfg    PostConfig
	logger *zap.Logger
}

func NewPostSampler(chain Chain, prices PriceSource, quoter pricing.Quoter, key model.PoolKey, base, eth model.TokenMeta, cfg PostConfig, logger *zap.Logger) (*PostSampler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !key.Contains(base.Address) || !key.Contains(eth.Address) {
		return nil, fmt.Errorf("pool key %s does not hold %s and %s", key, base.Address, eth.Address)
	}
	if cfg.Stride == 0 {
		return nil, fmt.Errorf("stride must be greater than zero")
	}
	return &PostSampler{
		chain:  chain,
		prices: prices,
		quoter: quoter,
		key:    key,
		base:   base,
		eth:    eth,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Sample walks the blocks from the migration block to ToBlock. A block whose price or spot read
// fails is skipped; a failed quote drops only that observation.
func (s *PostSampler) Sample(ctx context.Context) ([]model.SlippageObservation, Stats, error) {
	to := s.cfg.ToBlock
	if to == 0 {
		latest, err := s.chain.LatestBlockNumber(ctx)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("latest block: %w", err)
		}
		to = latest
	}
	blocks, err := scan.Stride(s.cfg.MigrationBlock, to, s.cfg.Stride)
	if err != nil {
		return nil, Stats{}, err
	}

	sell := model.CanonicalDirection(model.Direction(s.base.Symbol, s.eth.Symbol))
	buy := model.CanonicalDirection(model.Direction(s.eth.Symbol, s.base.Symbol))
	ethUnit := "USD_per_ETH"
	baseUnit := "USD_per_" + s.base.Symbol
	fee := s.key.FeeRate()

	s.logger.Info("post-migration sampling",
		zap.Uint64("from", s.cfg.MigrationBlock),
		zap.Uint64("to", to),
		zap.Int("blocks", len(blocks)),
		zap.String("pool_key", s.key.String()),
	)

	stats := Stats{}
	out := make([]model.SlippageObservation, 0, len(blocks)*len(s.cfg.Sizes)*2)
	for i, block := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		ts, err := s.chain.BlockTimestamp(ctx, block)
		if err != nil {
			s.skip(block, "timestamp", err, &stats)
			continue
		}
		price, err := s.prices.At(ctx, block)
		if err != nil || !positive(price.EthUSD) {
			s.skip(block, "eth/usd", err, &stats)
			continue
		}
		spot, err := pricing.MicroSpot(ctx, s.quoter, s.key, s.base, s.eth, block)
		if err != nil || !positive(spot) {
			s.skip(block, "spot", err, &stats)
			continue
		}
		ethUSD := price.EthUSD
		baseUSD := spot * ethUSD
		stats.Blocks++

		for _, usd := range s.cfg.Sizes {
			obs := model.SlippageObservation{
				BlockNumber:   block,
				Timestamp:     ts,
				DatetimeUTC:   model.FormatUTC(ts),
				USDNotionalIn: usd,
				FeeRate:       fee,
				FeeUint24:     s.key.Fee,
				TickSpacing:   s.key.TickSpacing,
				Hooks:         s.key.Hooks,
			}

			sellObs := obs
			sellObs.Direction = sell
			sellObs.AmountIn = usd / baseUSD
			sellObs.AmountInUnit = s.base.Symbol
			sellObs.AmountOutUnit = "ETH"
			sellObs.SpotPrice = ethUSD
			sellObs.SpotPriceUnit = ethUnit
			sellObs.AvgExecPriceUnit = ethUnit
			s.quote(ctx, block, &out, sellObs, s.base, s.eth, usd, &stats)

			buyObs := obs
			buyObs.Direction = buy
			buyObs.AmountIn = usd / ethUSD
			buyObs.AmountInUnit = "ETH"
			buyObs.AmountOutUnit = s.base.Symbol
			buyObs.SpotPrice = baseUSD
			buyObs.SpotPriceUnit = baseUnit
			buyObs.AvgExecPriceUnit = baseUnit
			s.quote(ctx, block, &out, buyObs, s.eth, s.base, usd, &stats)
		}

		if (i+1)%25 == 0 {
			s.logger.Info("post-migration progress", zap.Int("done", i+1), zap.Int("blocks", len(blocks)))
		}
	}

	s.logger.Info("post-migration sampling done",
		zap.Int("blocks", stats.Blocks),
		zap.Int("observations", stats.Observations),
		zap.Int("dropped", stats.Dropped),
	)
	return out, stats, nil
}

func (s *PostSampler) quote(ctx context.Context, block uint64, out *[]model.SlippageObservation, obs model.SlippageObservation, in, outToken model.TokenMeta, usd float64, stats *Stats) {
	raw := pricing.ToRawFloat(obs.AmountIn, in.Decimals)
	if raw.Sign() == 0 {
		stats.Dropped++
		return
	}
	q, err := s.quoter.QuoteExactInputSingle(ctx, s.key, in.Address, raw, block)
	if err != nil {
		stats.Dropped++
		s.logger.Warn("quote failed",
			zap.Uint64("block", block),
			zap.String("direction", obs.Direction),
			zap.Float64("usd", usd),
			zap.Error(err),
		)
		return
	}
	obs.AmountOut, _ = pricing.FromRaw(q.AmountOut, outToken.Decimals).Float64()
	if q.GasEstimate != nil && q.GasEstimate.IsUint64() {
		obs.GasEstimate = q.GasEstimate.Uint64()
	}
	if appendObservation(out, obs, usd) {
		stats.Observations++
	} else {
		stats.Dropped++
	}
}

func (s *PostSampler) skip(block uint64, what string, err error, stats *Stats) {
	stats.Dropped += 2 * len(s.cfg.Sizes)
	fields := []zap.Field{zap.Uint64("block", block), zap.String("read", what)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Warn("skip block", fields...)
}

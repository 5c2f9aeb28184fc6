package vault

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/pricing"
	"github.com/Kuber-code/Arrakis-Assessment/internal/scan"
)

// Chain is the block information the sampler needs.
type Chain interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// PriceSource returns ETH/USD at a block.
type PriceSource interface {
	At(ctx context.Context, block uint64) (model.EthUSDPoint, error)
}

// Underlying reads the vault's two raw underlying amounts.
type Underlying interface {
	TotalUnderlying(ctx context.Context, block uint64) (*big.Int, *big.Int, error)
}

// Config controls the sampled block range. A zero ToBlock means latest.
type Config struct {
	MigrationBlock uint64
	ToBlock        uint64
	Stride         uint64
}

// Stats counts sampled, dropped and ambiguous blocks.
type Stats struct {
	Blocks    int
	Samples   int
	Dropped   int
	Ambiguous int
	Flips     int
}

// Sampler reconstructs vault holdings at strided blocks after the migration.
type Sampler struct {
	chain    Chain
	prices   PriceSource
	vault    Underlying
	quoter   pricing.Quoter
	key      model.PoolKey
	base     model.TokenMeta
	eth      model.TokenMeta
	baseIsC0 bool
	cfg      Config
	logger   *zap.Logger
}

func NewSampler(chain Chain, prices PriceSource, vault Underlying, quoter pricing.Quoter, key model.PoolKey, base, eth model.TokenMeta, cfg Config, logger *zap.Logger) (*Sampler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !key.Contains(base.Address) || !key.Contains(eth.Address) || model.SameAddress(base.Address, eth.Address) {
		return nil, fmt.Errorf("pool key %s does not hold %s and %s", key, base.Address, eth.Address)
	}
	if cfg.Stride == 0 {
		return nil, fmt.Errorf("stride must be greater than zero")
	}
	return &Sampler{
		chain:    chain,
		prices:   prices,
		vault:    vault,
		quoter:   quoter,
		key:      key,
		base:     base,
		eth:      eth,
		baseIsC0: model.SameAddress(key.Currency0, base.Address),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Sample reads every sampled block, then fills baselines and indices. A block with a failed
// read is dropped and logged.
func (s *Sampler) Sample(ctx context.Context) ([]model.VaultSample, Stats, error) {
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
	s.logger.Info("vault sampling",
		zap.Uint64("from", s.cfg.MigrationBlock),
		zap.Uint64("to", to),
		zap.Int("blocks", len(blocks)),
	)

	stats := Stats{Blocks: len(blocks)}
	samples := make([]model.VaultSample, 0, len(blocks))
	prevRatio := math.NaN()
	for i, block := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		sample, err := s.read(ctx, block, prevRatio)
		if err != nil {
			stats.Dropped++
			s.logger.Warn("skip vault block", zap.Uint64("block", block), zap.Error(err))
			continue
		}
		if sample.MappingAmbiguous {
			stats.Ambiguous++
		}
		if n := len(samples); n > 0 && baseFirst(samples[n-1].MappingMode) != baseFirst(sample.MappingMode) {
			sample.MappingFlip = true
			stats.Flips++
			s.logger.Warn("underlying mapping flipped",
				zap.Uint64("block", block),
				zap.String("from", samples[n-1].MappingMode),
				zap.String("to", sample.MappingMode),
			)
		}
		prevRatio = sample.AmtBase / sample.AmtETH
		samples = append(samples, sample)

		if (i+1)%50 == 0 {
			s.logger.Info("vault sampling progress", zap.Int("done", i+1), zap.Int("blocks", len(blocks)))
		}
	}
	stats.Samples = len(samples)
	if len(samples) == 0 {
		return nil, stats, fmt.Errorf("no vault samples between blocks %d and %d", s.cfg.MigrationBlock, to)
	}
	if err := ApplyBaselines(samples); err != nil {
		return nil, stats, err
	}

	s.logger.Info("vault sampling done",
		zap.Int("samples", stats.Samples),
		zap.Int("dropped", stats.Dropped),
		zap.Int("ambiguous", stats.Ambiguous),
		zap.Int("flips", stats.Flips),
	)
	return samples, stats, nil
}

func (s *Sampler) read(ctx context.Context, block uint64, prevRatio float64) (model.VaultSample, error) {
	ts, err := s.chain.BlockTimestamp(ctx, block)
	if err != nil {
		return model.VaultSample{}, fmt.Errorf("timestamp: %w", err)
	}
	price, err := s.prices.At(ctx, block)
	if err != nil {
		return model.VaultSample{}, fmt.Errorf("eth/usd: %w", err)
	}
	if !positive(price.EthUSD) {
		return model.VaultSample{}, fmt.Errorf("eth/usd is %v", price.EthUSD)
	}

	token0, token1 := s.eth, s.base
	if s.baseIsC0 {
		token0, token1 = s.base, s.eth
	}
	spot, err := pricing.SpotFromQuote(ctx, s.quoter, s.key, token0, token1, pricing.Currency0Amount, block)
	if err != nil {
		return model.VaultSample{}, fmt.Errorf("spot: %w", err)
	}
	basePerETH, ethPerBase := spot, 1/spot
	if s.baseIsC0 {
		basePerETH, ethPerBase = 1/spot, spot
	}
	if !positive(basePerETH) || !positive(ethPerBase) {
		return model.VaultSample{}, fmt.Errorf("spot is %v", spot)
	}

	u0, u1, err := s.vault.TotalUnderlying(ctx, block)
	if err != nil {
		return model.VaultSample{}, fmt.Errorf("totalUnderlying: %w", err)
	}
	d := Decompose(u0, u1, s.base, s.eth, basePerETH, prevRatio)

	baseUSD := ethPerBase * price.EthUSD
	sample := model.VaultSample{
		BlockNumber:      block,
		Timestamp:        ts,
		DatetimeUTC:      model.FormatUTC(ts),
		Underlying0Raw:   u0.String(),
		Underlying1Raw:   u1.String(),
		MappingMode:      d.Mode,
		MappingAmbiguous: d.Ambiguous,
		BaseSymbol:       s.base.Symbol,
		AmtETH:           d.AmtETH,
		AmtBase:          d.AmtBase,
		EthUSD:           price.EthUSD,
		SpotBasePerETH:   basePerETH,
		SpotETHPerBase:   ethPerBase,
		BaseUSD:          baseUSD,
		ValueETHUSD:      d.AmtETH * price.EthUSD,
		ValueBaseUSD:     d.AmtBase * baseUSD,
	}
	sample.ValueTotalUSD = sample.ValueETHUSD + sample.ValueBaseUSD
	return sample, nil
}

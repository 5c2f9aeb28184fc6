package slippage

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// PreConfig controls the offline UniV2 sampler.
type PreConfig struct {
	MigrationBlock uint64
	Sizes          []float64
	MaxPoints      int
	WETH           string
}

// Stats counts what a sampler produced and dropped.
type Stats struct {
	Blocks       int
	Observations int
	Dropped      int
}

// SamplePre simulates trades against UniV2 reserves before the migration block. Each reserve row is
// priced with the latest ETH/USD point at or before its block; rows without one are skipped.
func SamplePre(points []model.SyncPoint, ethUSD []model.EthUSDPoint, meta model.PairMetadata, cfg PreConfig, logger *zap.Logger) ([]model.SlippageObservation, Stats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base, quote, baseIsToken0, err := meta.Split(cfg.WETH)
	if err != nil {
		return nil, Stats{}, err
	}

	prices := make([]model.EthUSDPoint, 0, len(ethUSD))
	for _, p := range ethUSD {
		if positive(p.EthUSD) {
			prices = append(prices, p)
		}
	}
	if len(prices) == 0 {
		return nil, Stats{}, fmt.Errorf("eth/usd series is empty")
	}
	sort.SliceStable(prices, func(i, j int) bool { return prices[i].BlockNumber < prices[j].BlockNumber })

	type row struct {
		point  model.SyncPoint
		ethUSD float64
	}
	rows := make([]row, 0, len(points))
	for _, p := range points {
		if p.BlockNumber >= cfg.MigrationBlock {
			continue
		}
		idx := sort.Search(len(prices), func(i int) bool { return prices[i].BlockNumber > p.BlockNumber }) - 1
		if idx < 0 {
			continue
		}
		rows = append(rows, row{point: p, ethUSD: prices[idx].EthUSD})
	}
	if len(rows) == 0 {
		return nil, Stats{}, fmt.Errorf("no pre-migration reserve rows with an eth/usd price before block %d", cfg.MigrationBlock)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].point.BlockNumber < rows[j].point.BlockNumber })

	baseToQuote := model.Direction(base.Symbol, quote.Symbol)
	quoteToBase := model.Direction(quote.Symbol, base.Symbol)
	baseUnit := "USD_per_" + base.Symbol
	quoteUnit := "USD_per_" + quote.Symbol

	stats := Stats{}
	out := make([]model.SlippageObservation, 0, len(rows)*len(cfg.Sizes)*2)
	for _, i := range DownsampleIndices(len(rows), cfg.MaxPoints) {
		r := rows[i]
		stats.Blocks++
		reserveBase, reserveQuote := r.point.Reserve0, r.point.Reserve1
		if !baseIsToken0 {
			reserveBase, reserveQuote = r.point.Reserve1, r.point.Reserve0
		}
		if !positive(reserveBase) || !positive(reserveQuote) {
			stats.Dropped += 2 * len(cfg.Sizes)
			logger.Warn("skip block with empty reserves", zap.Uint64("block", r.point.BlockNumber))
			continue
		}
		baseUSD := reserveQuote / reserveBase * r.ethUSD

		for _, usd := range cfg.Sizes {
			obs := model.SlippageObservation{
				BlockNumber:   r.point.BlockNumber,
				Timestamp:     r.point.Timestamp,
				DatetimeUTC:   model.FormatUTC(r.point.Timestamp),
				USDNotionalIn: usd,
				FeeRate:       UniV2Fee,
			}

			sell := obs
			sell.Direction = baseToQuote
			sell.AmountIn = usd / baseUSD
			sell.AmountInUnit = base.Symbol
			sell.AmountOut = CPMMOut(sell.AmountIn, reserveBase, reserveQuote, UniV2Fee)
			sell.AmountOutUnit = quote.Symbol
			sell.SpotPrice = r.ethUSD
			sell.SpotPriceUnit = quoteUnit
			sell.AvgExecPriceUnit = quoteUnit
			if appendObservation(&out, sell, usd) {
				stats.Observations++
			} else {
				stats.Dropped++
			}

			buy := obs
			buy.Direction = quoteToBase
			buy.AmountIn = usd / r.ethUSD
			buy.AmountInUnit = quote.Symbol
			buy.AmountOut = CPMMOut(buy.AmountIn, reserveQuote, reserveBase, UniV2Fee)
			buy.AmountOutUnit = base.Symbol
			buy.SpotPrice = baseUSD
			buy.SpotPriceUnit = baseUnit
			buy.AvgExecPriceUnit = baseUnit
			if appendObservation(&out, buy, usd) {
				stats.Observations++
			} else {
				stats.Dropped++
			}
		}
	}

	logger.Info("pre-migration sampling done",
		zap.Int("rows", len(rows)),
		zap.Int("blocks", stats.Blocks),
		zap.Int("observations", stats.Observations),
		zap.Int("dropped", stats.Dropped),
	)
	return out, stats, nil
}

// appendObservation fills the execution price and slippage, keeping only finite observations.
func appendObservation(out *[]model.SlippageObservation, obs model.SlippageObservation, usd float64) bool {
	if !positive(obs.AmountOut) {
		return false
	}
	obs.AvgExecPrice = usd / obs.AmountOut
	pct, ok := Pct(obs.SpotPrice, obs.AvgExecPrice, obs.FeeRate)
	if !ok {
		return false
	}
	obs.SlippagePct = pct
	*out = append(*out, obs)
	return true
}

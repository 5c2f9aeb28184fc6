package migration

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/aggregate"
	"github.com/Kuber-code/Arrakis-Assessment/internal/dex"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/scan"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

// Chain is the RPC surface the locator needs.
type Chain interface {
	scan.LogFilterer
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// Config controls a locator run. A zero ToBlock means latest; a zero FromBlock means ToBlock-Lookback.
type Config struct {
	Pair        common.Address
	PoolManager common.Address
	PoolID      common.Hash
	WETH        string
	FromBlock   uint64
	ToBlock     uint64
	Lookback    uint64
	Fetch       scan.FetchConfig
	Rule        Rule
	BinInterval time.Duration
	Regime      RegimeConfig
}

// Result carries the record and every intermediate series the locate stage persists.
type Result struct {
	Record  model.MigrationRecord
	Series  Series
	Bins    []model.ReserveBin
	Regime  *model.RegimeChange
	Confirm Confirmation
}

// Locator finds the block where liquidity left the source pair for the destination pool.
type Locator struct {
	chain   Chain
	cfg     Config
	fetcher *scan.Fetcher
	v2      *dex.EventDecoder
	v4      *dex.EventDecoder
	sink    storage.EventSink
	logger  *zap.Logger
	now     func() time.Time
}

func NewLocator(chain Chain, cfg Config, logger *zap.Logger) (*Locator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BinInterval <= 0 {
		cfg.BinInterval = 30 * time.Minute
	}
	v2, err := dex.NewV2PairDecoder()
	if err != nil {
		return nil, err
	}
	v4, err := dex.NewV4PoolManagerDecoder()
	if err != nil {
		return nil, err
	}
	return &Locator{
		chain:   chain,
		cfg:     cfg,
		fetcher: scan.NewFetcher(chain, cfg.Fetch, logger),
		v2:      v2,
		v4:      v4,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// WithEventSink records the decoded events of the confirmation window.
func (l *Locator) WithEventSink(sink storage.EventSink) *Locator {
	l.sink = sink
	return l
}

// Locate runs the scan. On ErrNoMigration the returned Result still carries the reserve series
// and bins so they can be inspected.
func (l *Locator) Locate(ctx context.Context, meta model.PairMetadata) (Result, error) {
	_, _, baseIsToken0, err := meta.Split(l.cfg.WETH)
	if err != nil {
		return Result{}, err
	}
	quoteIsToken1 := baseIsToken0

	from, to, err := l.resolveRange(ctx)
	if err != nil {
		return Result{}, err
	}
	l.logger.Info("locate migration",
		zap.String("pair", l.cfg.Pair.Hex()),
		zap.String("pool_id", l.cfg.PoolID.Hex()),
		zap.Uint64("from", from),
		zap.Uint64("to", to),
	)

	sourceEvents, err := l.fetchDecoded(ctx, l.v2, from, to, scan.Filter{
		Addresses: []common.Address{l.cfg.Pair},
		Topics:    [][]common.Hash{l.v2.Topics("Sync", "Burn", "Mint")},
	})
	if err != nil {
		return Result{}, fmt.Errorf("fetch source events: %w", err)
	}

	timestamps, err := l.timestamps(ctx, sourceEvents, "Sync")
	if err != nil {
		return Result{}, err
	}
	series, err := BuildSeries(sourceEvents, meta, quoteIsToken1, timestamps)
	if err != nil {
		return Result{}, err
	}
	if len(series.Points) == 0 {
		return Result{Series: series}, fmt.Errorf("%w: no Sync events in %d-%d", ErrNoMigration, from, to)
	}
	burns, err := collectBurns(sourceEvents, meta, quoteIsToken1)
	if err != nil {
		return Result{}, err
	}

	bins, err := aggregate.BinSeries(series.AggregatePoints(), l.cfg.BinInterval)
	if err != nil {
		return Result{}, err
	}
	regime := DetectRegimeChange(bins, l.cfg.Regime)
	result := Result{Series: series, Bins: bins, Regime: regime}

	destEvents, err := l.fetchDecoded(ctx, l.v4, from, to, scan.Filter{
		Addresses: []common.Address{l.cfg.PoolManager},
		Topics:    [][]common.Hash{l.v4.Topics("Initialize", "ModifyLiquidity"), {l.cfg.PoolID}},
	})
	if err != nil {
		return result, fmt.Errorf("fetch destination events: %w", err)
	}
	destination := make([]model.EventRef, 0, len(destEvents))
	for _, event := range destEvents {
		destination = append(destination, event.Ref())
	}

	l.logger.Info("locator inputs",
		zap.Int("sync_events", len(series.Points)),
		zap.Int("burn_events", len(burns)),
		zap.Int("destination_events", len(destination)),
		zap.Int("bins", len(bins)),
	)

	selected, err := Select(series, burns, destination, l.cfg.Rule)
	if err != nil {
		if errors.Is(err, ErrNoMigration) {
			return result, fmt.Errorf("%w: %d candidates above %.2f drop, none with destination liquidity within %d blocks",
				ErrNoMigration, len(Candidates(series, l.cfg.Rule.DropThreshold)), l.cfg.Rule.DropThreshold, l.cfg.Rule.ConfirmWindow)
		}
		return result, err
	}
	l.logger.Info("migration block selected",
		zap.Uint64("block", selected.MigrationBlock),
		zap.String("time", selected.MigrationTimeUTC),
		zap.Float64("drop_fraction", selected.DropFraction),
		zap.String("confirming", selected.Confirming.Event),
	)

	confirm, err := l.confirm(ctx, selected.MigrationBlock, meta, quoteIsToken1)
	if err != nil {
		return result, err
	}
	if l.sink != nil {
		window := make([]model.TypedEvent, 0, len(confirm.Events))
		window = append(window, confirm.Events...)
		window = append(window, destInWindow(destEvents, confirm.Summary.FromBlock, confirm.Summary.ToBlock)...)
		if err := l.sink.PutEvents(window); err != nil {
			return result, fmt.Errorf("write window events: %w", err)
		}
	}

	result.Confirm = confirm
	result.Record = model.MigrationRecord{
		RunID:       uuid.NewString(),
		GeneratedAt: l.now().UTC().Format(time.RFC3339),
		Rule:        l.cfg.Rule.Describe(),
		Scan:        model.ScanRange{FromBlock: from, ToBlock: to, BatchSize: l.cfg.Fetch.BatchSize},
		Source:      l.cfg.Pair.Hex(),
		Destination: l.cfg.PoolID.Hex(),
		Selected:    selected,
		Supporting: model.MigrationSupport{
			LargestSyncDrop: series.LargestDrop(),
			LargestBurn:     LargestBurnAround(burns, selected.MigrationBlock, l.cfg.Rule.ConfirmWindow),
			RegimeChange:    regime,
		},
	}
	return result, nil
}

func (l *Locator) resolveRange(ctx context.Context) (uint64, uint64, error) {
	to := l.cfg.ToBlock
	if to == 0 {
		latest, err := l.chain.LatestBlockNumber(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("latest block: %w", err)
		}
		to = latest
	}
	from := l.cfg.FromBlock
	if from == 0 && l.cfg.Lookback > 0 && to > l.cfg.Lookback {
		from = to - l.cfg.Lookback
	}
	if from > to {
		return 0, 0, fmt.Errorf("from block %d is after to block %d", from, to)
	}
	return from, to, nil
}

func (l *Locator) fetchDecoded(ctx context.Context, decoder *dex.EventDecoder, from, to uint64, filter scan.Filter) ([]model.TypedEvent, error) {
	logs, err := l.fetcher.Fetch(ctx, from, to, filter)
	if err != nil {
		return nil, err
	}
	return decodeLogs(decoder, logs, l.logger), nil
}

func decodeLogs(decoder *dex.EventDecoder, logs []types.Log, logger *zap.Logger) []model.TypedEvent {
	events := make([]model.TypedEvent, 0, len(logs))
	for _, log := range logs {
		event, err := decoder.Decode(log)
		if err != nil {
			logger.Warn("skip undecodable log",
				zap.Uint64("block", log.BlockNumber),
				zap.Uint("log_index", log.Index),
				zap.Error(err),
			)
			continue
		}
		events = append(events, *event)
	}
	return events
}

func (l *Locator) timestamps(ctx context.Context, events []model.TypedEvent, name string) (map[uint64]uint64, error) {
	out := make(map[uint64]uint64)
	for _, event := range events {
		if event.EventName != name {
			continue
		}
		if _, ok := out[event.BlockNumber]; ok {
			continue
		}
		ts, err := l.chain.BlockTimestamp(ctx, event.BlockNumber)
		if err != nil {
			return nil, fmt.Errorf("timestamp for block %d: %w", event.BlockNumber, err)
		}
		out[event.BlockNumber] = ts
		if len(out)%500 == 0 {
			l.logger.Info("resolved block timestamps", zap.Int("blocks", len(out)))
		}
	}
	return out, nil
}

func collectBurns(events []model.TypedEvent, meta model.PairMetadata, quoteIsToken1 bool) ([]Burn, error) {
	burns := make([]Burn, 0)
	for _, event := range events {
		data, ok := event.Decoded.(model.BurnEventData)
		if !ok {
			continue
		}
		a0, ok0 := new(big.Int).SetString(data.Amount0, 10)
		a1, ok1 := new(big.Int).SetString(data.Amount1, 10)
		if !ok0 || !ok1 {
			return nil, fmt.Errorf("invalid burn amounts at block %d", event.BlockNumber)
		}
		burn := Burn{
			Ref:        event.Ref(),
			Amount0Raw: a0,
			Amount1Raw: a1,
			Amount0:    dex.ScaleAmount(a0, meta.Token0.Decimals),
			Amount1:    dex.ScaleAmount(a1, meta.Token1.Decimals),
		}
		if quoteIsToken1 {
			burn.QuoteAmount = burn.Amount1
			burn.Ref.Amount = a1.String()
		} else {
			burn.QuoteAmount = burn.Amount0
			burn.Ref.Amount = a0.String()
		}
		burns = append(burns, burn)
	}
	return burns, nil
}

func destInWindow(events []model.TypedEvent, from, to uint64) []model.TypedEvent {
	out := make([]model.TypedEvent, 0)
	for _, event := range events {
		if event.BlockNumber >= from && event.BlockNumber <= to {
			out = append(out, event)
		}
	}
	return out
}

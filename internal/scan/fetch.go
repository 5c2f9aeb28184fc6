package scan

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// LogFilterer runs eth_getLogs queries.
type LogFilterer interface {
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
}

// Filter selects logs by emitting address and topic positions.
type Filter struct {
	Addresses []common.Address
	Topics    [][]common.Hash
}

// FetchConfig sizes the batches of a log scan.
type FetchConfig struct {
	BatchSize uint64
	MinSplit  uint64
}

// Fetcher scans a block range in batches. A batch the provider rejects is halved until MinSplit blocks.
type Fetcher struct {
	src    LogFilterer
	cfg    FetchConfig
	logger *zap.Logger
}

// NewFetcher builds a Fetcher with its dependencies.
func NewFetcher(src LogFilterer, cfg FetchConfig, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinSplit == 0 {
		cfg.MinSplit = 1
	}
	return &Fetcher{src: src, cfg: cfg, logger: logger}
}

// Fetch returns every matching log in [from, to], deduplicated and ordered by block and log index.
func (f *Fetcher) Fetch(ctx context.Context, from, to uint64, filter Filter) ([]types.Log, error) {
	if f.src == nil {
		return nil, fmt.Errorf("log source is nil")
	}
	ranges, err := SplitRange(from, to, f.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]types.Log, 0)
	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		f.logger.Debug("fetch logs", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
		logs, err := f.fetchRange(ctx, blockRange, filter)
		if err != nil {
			return nil, err
		}
		for _, log := range logs {
			if log.Removed {
				continue
			}
			id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, log)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BlockNumber != out[j].BlockNumber {
			return out[i].BlockNumber < out[j].BlockNumber
		}
		return out[i].Index < out[j].Index
	})
	return out, nil
}

func (f *Fetcher) fetchRange(ctx context.Context, r BlockRange, filter Filter) ([]types.Log, error) {
	logs, err := f.src.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(r.From),
		ToBlock:   new(big.Int).SetUint64(r.To),
		Addresses: filter.Addresses,
		Topics:    filter.Topics,
	})
	if err == nil {
		return logs, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if r.Len() <= f.cfg.MinSplit {
		return nil, fmt.Errorf("filter logs %d-%d: %w", r.From, r.To, err)
	}
	left, right, ok := r.Halve()
	if !ok {
		return nil, fmt.Errorf("filter logs %d-%d: %w", r.From, r.To, err)
	}

	f.logger.Warn("filter logs failed, splitting range",
		zap.Uint64("from", r.From),
		zap.Uint64("to", r.To),
		zap.Error(err),
	)
	leftLogs, err := f.fetchRange(ctx, left, filter)
	if err != nil {
		return nil, err
	}
	rightLogs, err := f.fetchRange(ctx, right, filter)
	if err != nil {
		return nil, err
	}
	return append(leftLogs, rightLogs...), nil
}

package migration

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/dex"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/scan"
)

// Swap is a decoded source Swap with scaled amounts.
type Swap struct {
	Ref        model.EventRef
	Amount0In  float64
	Amount1In  float64
	Amount0Out float64
	Amount1Out float64
	QuoteAbs   float64
}

// Confirmation is the source activity around the selected block.
type Confirmation struct {
	Burns   []Burn
	Swaps   []Swap
	Events  []model.TypedEvent
	Summary model.ConfirmSummary
}

func (l *Locator) confirm(ctx context.Context, block uint64, meta model.PairMetadata, quoteIsToken1 bool) (Confirmation, error) {
	window := l.cfg.Rule.ConfirmWindow
	from := uint64(0)
	if block > window {
		from = block - window
	}
	to := block + window

	events, err := l.fetchDecoded(ctx, l.v2, from, to, scan.Filter{
		Addresses: []common.Address{l.cfg.Pair},
		Topics:    [][]common.Hash{l.v2.Topics("Mint", "Burn", "Swap", "Sync")},
	})
	if err != nil {
		return Confirmation{}, fmt.Errorf("fetch confirm window: %w", err)
	}

	burns, err := collectBurns(events, meta, quoteIsToken1)
	if err != nil {
		return Confirmation{}, err
	}
	swaps, err := collectSwaps(events, meta, quoteIsToken1)
	if err != nil {
		return Confirmation{}, err
	}

	counts := map[string]int{"Mint": 0, "Burn": 0, "Swap": 0, "Sync": 0}
	for _, event := range events {
		counts[event.EventName]++
	}
	l.logger.Info("confirm window",
		zap.Uint64("from", from),
		zap.Uint64("to", to),
		zap.Int("mint", counts["Mint"]),
		zap.Int("burn", counts["Burn"]),
		zap.Int("swap", counts["Swap"]),
		zap.Int("sync", counts["Sync"]),
	)

	return Confirmation{
		Burns:  burns,
		Swaps:  swaps,
		Events: events,
		Summary: model.ConfirmSummary{
			MigrationBlock: block,
			FromBlock:      from,
			ToBlock:        to,
			Counts:         counts,
		},
	}, nil
}

func collectSwaps(events []model.TypedEvent, meta model.PairMetadata, quoteIsToken1 bool) ([]Swap, error) {
	swaps := make([]Swap, 0)
	for _, event := range events {
		data, ok := event.Decoded.(model.SwapEventData)
		if !ok {
			continue
		}
		raw := make([]*big.Int, 4)
		for i, text := range []string{data.Amount0In, data.Amount1In, data.Amount0Out, data.Amount1Out} {
			v, ok := new(big.Int).SetString(text, 10)
			if !ok {
				return nil, fmt.Errorf("invalid swap amount at block %d", event.BlockNumber)
			}
			raw[i] = v
		}
		swap := Swap{
			Ref:        event.Ref(),
			Amount0In:  dex.ScaleAmount(raw[0], meta.Token0.Decimals),
			Amount1In:  dex.ScaleAmount(raw[1], meta.Token1.Decimals),
			Amount0Out: dex.ScaleAmount(raw[2], meta.Token0.Decimals),
			Amount1Out: dex.ScaleAmount(raw[3], meta.Token1.Decimals),
		}
		if quoteIsToken1 {
			swap.QuoteAbs = math.Max(swap.Amount1In, swap.Amount1Out)
		} else {
			swap.QuoteAbs = math.Max(swap.Amount0In, swap.Amount0Out)
		}
		swaps = append(swaps, swap)
	}
	return swaps, nil
}

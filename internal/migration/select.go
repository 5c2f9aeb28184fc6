package migration

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// ErrNoMigration is returned when no block satisfies the selection rule.
var ErrNoMigration = errors.New("no migration block found")

// SelectedBy names the rule recorded in the migration record.
const SelectedBy = "quote_reserve_drop_confirmed_by_destination_liquidity"

// Rule is the migration-block selection rule.
type Rule struct {
	DropThreshold float64
	ConfirmWindow uint64
}

func (r Rule) Describe() model.MigrationRule {
	return model.MigrationRule{
		Description: fmt.Sprintf(
			"earliest source Sync whose quote reserve drops by at least %.0f%% of the previous reserve, "+
				"with destination Initialize or ModifyLiquidity for the pool within %d blocks after it; "+
				"ties in a block resolve to the lowest log index",
			r.DropThreshold*100, r.ConfirmWindow),
		DropThreshold: r.DropThreshold,
		ConfirmWindow: r.ConfirmWindow,
	}
}

// Burn is a decoded source Burn with scaled amounts.
type Burn struct {
	Ref         model.EventRef
	Amount0Raw  *big.Int
	Amount1Raw  *big.Int
	Amount0     float64
	Amount1     float64
	QuoteAmount float64
}

// Candidate is a Sync event that passed the drop threshold.
type Candidate struct {
	Index        int
	DropFraction float64
	DropRaw      *big.Int
}

// Candidates returns the Sync events whose quote reserve fell by at least threshold of the
// previous reserve, in chain order.
func Candidates(series Series, threshold float64) []Candidate {
	out := make([]Candidate, 0)
	for i := 1; i < len(series.Points); i++ {
		prev, cur := series.Quote(i-1), series.Quote(i)
		if prev <= 0 || cur >= prev {
			continue
		}
		fraction := (prev - cur) / prev
		if fraction < threshold {
			continue
		}
		out = append(out, Candidate{
			Index:        i,
			DropFraction: fraction,
			DropRaw:      new(big.Int).Sub(series.quoteRaw(i-1), series.quoteRaw(i)),
		})
	}
	return out
}

// Select applies the rule: the earliest candidate with destination liquidity activity in
// [B, B+ConfirmWindow]. The confirming event is the block's largest quote Burn, else the Sync.
func Select(series Series, burns []Burn, destination []model.EventRef, rule Rule) (model.MigrationSelection, error) {
	dest := make([]model.EventRef, len(destination))
	copy(dest, destination)
	sort.SliceStable(dest, func(i, j int) bool { return dest[i].Before(dest[j]) })

	for _, candidate := range Candidates(series, rule.DropThreshold) {
		point := series.Points[candidate.Index]
		block := point.BlockNumber

		idx := sort.Search(len(dest), func(i int) bool { return dest[i].BlockNumber >= block })
		if idx == len(dest) || dest[idx].BlockNumber > block+rule.ConfirmWindow {
			continue
		}

		confirming := model.EventRef{
			Event:       "Sync",
			BlockNumber: block,
			TxHash:      point.TxHash,
			LogIndex:    point.LogIndex,
			Amount:      candidate.DropRaw.String(),
		}
		if burn := largestBurn(burns, block, block); burn != nil {
			confirming = burn.Ref
		}

		return model.MigrationSelection{
			MigrationBlock:   block,
			MigrationTimeUTC: model.FormatUTC(point.Timestamp),
			SelectedBy:       SelectedBy,
			DropFraction:     candidate.DropFraction,
			Confirming:       confirming,
			Destination:      dest[idx],
		}, nil
	}

	return model.MigrationSelection{}, ErrNoMigration
}

// largestBurn returns the burn with the largest quote amount in [from, to]; ties keep chain order.
func largestBurn(burns []Burn, from, to uint64) *Burn {
	var best *Burn
	for i := range burns {
		b := &burns[i]
		if b.Ref.BlockNumber < from || b.Ref.BlockNumber > to {
			continue
		}
		if best == nil || b.QuoteAmount > best.QuoteAmount ||
			(b.QuoteAmount == best.QuoteAmount && b.Ref.Before(best.Ref)) {
			best = b
		}
	}
	return best
}

// LargestBurnAround returns the largest quote Burn within ±window of block.
func LargestBurnAround(burns []Burn, block, window uint64) *model.EventRef {
	from := uint64(0)
	if block > window {
		from = block - window
	}
	burn := largestBurn(burns, from, block+window)
	if burn == nil {
		return nil
	}
	ref := burn.Ref
	return &ref
}

package migration

import (
	"fmt"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

var syncColumns = []string{
	"block_number", "tx_hash", "log_index", "reserve0_raw", "reserve1_raw",
	"timestamp", "datetime_utc", "reserve0", "reserve1", "delta_reserve1",
}

// SyncTable renders the reserve series. delta_reserve1 is the quote-reserve change from the
// previous row and empty on the first row.
func SyncTable(series Series) *storage.Table {
	table := storage.NewTable(syncColumns...)
	for i, p := range series.Points {
		delta := ""
		if i > 0 {
			delta = storage.FormatFloat(series.Quote(i) - series.Quote(i-1))
		}
		table.Append(p.BlockNumber, p.TxHash, p.LogIndex, p.Reserve0Raw, p.Reserve1Raw,
			p.Timestamp, model.FormatUTC(p.Timestamp), p.Reserve0, p.Reserve1, delta)
	}
	return table
}

// ReadSyncTable parses a table written by SyncTable.
func ReadSyncTable(table *storage.Table) ([]model.SyncPoint, error) {
	points := make([]model.SyncPoint, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		block, err := row.Uint("block_number")
		if err != nil {
			return nil, fmt.Errorf("sync row %d: %w", i, err)
		}
		logIndex, err := row.Uint("log_index")
		if err != nil {
			return nil, fmt.Errorf("sync row %d: %w", i, err)
		}
		ts, err := row.Uint("timestamp")
		if err != nil {
			return nil, fmt.Errorf("sync row %d: %w", i, err)
		}
		r0, err := row.Float("reserve0")
		if err != nil {
			return nil, fmt.Errorf("sync row %d: %w", i, err)
		}
		r1, err := row.Float("reserve1")
		if err != nil {
			return nil, fmt.Errorf("sync row %d: %w", i, err)
		}
		points = append(points, model.SyncPoint{
			BlockNumber: block,
			TxHash:      row.String("tx_hash"),
			LogIndex:    logIndex,
			Timestamp:   ts,
			Reserve0Raw: row.String("reserve0_raw"),
			Reserve1Raw: row.String("reserve1_raw"),
			Reserve0:    r0,
			Reserve1:    r1,
		})
	}
	sortPoints(points)
	return points, nil
}

var binColumns = []string{
	"bin_30m", "reserve1_median", "reserve1_min", "reserve1_max",
	"block_median", "block_min", "block_max", "n_obs",
}

func BinTable(bins []model.ReserveBin) *storage.Table {
	table := storage.NewTable(binColumns...)
	for _, b := range bins {
		table.Append(model.FormatUTC(b.BinStart), b.Median, b.Min, b.Max, b.BlockMedian, b.BlockMin, b.BlockMax, b.Count)
	}
	return table
}

// BinBlocks returns the distinct positive block_median values of a binned table in ascending order.
func BinBlocks(table *storage.Table) ([]uint64, error) {
	if !table.HasColumn("block_median") {
		return nil, fmt.Errorf("binned table has no block_median column")
	}
	seen := make(map[uint64]struct{})
	blocks := make([]uint64, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		block, err := table.Row(i).Uint("block_median")
		if err != nil {
			return nil, fmt.Errorf("bin row %d: %w", i, err)
		}
		if block == 0 {
			continue
		}
		if _, ok := seen[block]; ok {
			continue
		}
		seen[block] = struct{}{}
		blocks = append(blocks, block)
	}
	sortUint64(blocks)
	return blocks, nil
}

// BurnTable renders confirm-window burns with symbol-suffixed amount columns.
func BurnTable(burns []Burn, meta model.PairMetadata) *storage.Table {
	s0, s1 := meta.Token0.Symbol, meta.Token1.Symbol
	table := storage.NewTable("block_number", "tx_hash", "log_index",
		"amount0_raw_"+s0, "amount1_raw_"+s1, "amount0_"+s0, "amount1_"+s1)
	for _, b := range burns {
		table.Append(b.Ref.BlockNumber, b.Ref.TxHash, b.Ref.LogIndex,
			b.Amount0Raw.String(), b.Amount1Raw.String(), b.Amount0, b.Amount1)
	}
	return table
}

// SwapTable renders confirm-window swaps; abs_quote is the larger quote leg.
func SwapTable(swaps []Swap, meta model.PairMetadata) *storage.Table {
	s0, s1 := meta.Token0.Symbol, meta.Token1.Symbol
	table := storage.NewTable("block_number", "tx_hash", "log_index",
		"amount0_in_"+s0, "amount1_in_"+s1, "amount0_out_"+s0, "amount1_out_"+s1, "abs_quote")
	for _, s := range swaps {
		table.Append(s.Ref.BlockNumber, s.Ref.TxHash, s.Ref.LogIndex,
			s.Amount0In, s.Amount1In, s.Amount0Out, s.Amount1Out, s.QuoteAbs)
	}
	return table
}

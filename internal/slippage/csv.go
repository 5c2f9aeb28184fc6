package slippage

import (
	"fmt"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

var observationColumns = []string{
	"block_number", "timestamp", "datetime_utc", "direction", "usd_notional_in",
	"amount_in", "amount_in_unit", "amount_out", "amount_out_unit",
	"spot_price", "spot_price_unit", "avg_exec_price", "avg_exec_price_unit",
	"slippage_pct", "fee_rate",
}

var poolColumns = []string{"fee_uint24", "tick_spacing", "hooks", "gas_estimate"}

// ObservationTable renders observations; withPool adds the UniV4 pool columns.
func ObservationTable(observations []model.SlippageObservation, withPool bool) *storage.Table {
	header := append([]string{}, observationColumns...)
	if withPool {
		header = append(header, poolColumns...)
	}
	table := storage.NewTable(header...)
	for _, o := range observations {
		values := []interface{}{
			o.BlockNumber, o.Timestamp, o.DatetimeUTC, o.Direction, o.USDNotionalIn,
			o.AmountIn, o.AmountInUnit, o.AmountOut, o.AmountOutUnit,
			o.SpotPrice, o.SpotPriceUnit, o.AvgExecPrice, o.AvgExecPriceUnit,
			o.SlippagePct, o.FeeRate,
		}
		if withPool {
			values = append(values, o.FeeUint24, o.TickSpacing, o.Hooks, o.GasEstimate)
		}
		table.Append(values...)
	}
	return table
}

// ReadObservations parses an observation table. Rows with an empty slippage cell are skipped.
func ReadObservations(table *storage.Table) ([]model.SlippageObservation, error) {
	out := make([]model.SlippageObservation, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		obs := model.SlippageObservation{
			DatetimeUTC:      row.String("datetime_utc"),
			Direction:        row.String("direction"),
			AmountInUnit:     row.String("amount_in_unit"),
			AmountOutUnit:    row.String("amount_out_unit"),
			SpotPriceUnit:    row.String("spot_price_unit"),
			AvgExecPriceUnit: row.String("avg_exec_price_unit"),
			Hooks:            row.String("hooks"),
		}
		var err error
		if obs.BlockNumber, err = row.Uint("block_number"); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if obs.Timestamp, err = row.Uint("timestamp"); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		floats := []struct {
			column string
			dst    *float64
		}{
			{"usd_notional_in", &obs.USDNotionalIn},
			{"amount_in", &obs.AmountIn},
			{"amount_out", &obs.AmountOut},
			{"spot_price", &obs.SpotPrice},
			{"avg_exec_price", &obs.AvgExecPrice},
			{"slippage_pct", &obs.SlippagePct},
			{"fee_rate", &obs.FeeRate},
		}
		for _, f := range floats {
			if *f.dst, err = row.Float(f.column); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		if !positive(obs.USDNotionalIn) || obs.Direction == "" || row.String("slippage_pct") == "" {
			continue
		}
		if table.HasColumn("fee_uint24") {
			fee, err := row.Uint("fee_uint24")
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			obs.FeeUint24 = uint32(fee)
			spacing, err := row.Int("tick_spacing")
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			obs.TickSpacing = int32(spacing)
			obs.GasEstimate, _ = row.Uint("gas_estimate")
		}
		out = append(out, obs)
	}
	return out, nil
}

// SummaryTable renders execution_quality_summary.csv.
func SummaryTable(summaries []model.SlippageSummary) *storage.Table {
	table := storage.NewTable("venue_period", "direction", "usd_notional_in", "median", "p90", "n")
	for _, s := range summaries {
		table.Append(s.VenuePeriod, s.Direction, s.USDNotionalIn, s.Median, s.P90, s.N)
	}
	return table
}

// ReadSummaries parses a table written by SummaryTable.
func ReadSummaries(table *storage.Table) ([]model.SlippageSummary, error) {
	out := make([]model.SlippageSummary, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		s := model.SlippageSummary{VenuePeriod: row.String("venue_period"), Direction: row.String("direction")}
		var err error
		if s.USDNotionalIn, err = row.Float("usd_notional_in"); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if s.Median, err = row.Float("median"); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if s.P90, err = row.Float("p90"); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		n, err := row.Int("n")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		s.N = int(n)
		out = append(out, s)
	}
	return out, nil
}

// ComparisonTable renders execution_quality_comparison.csv.
func ComparisonTable(rows []model.SlippageComparison) *storage.Table {
	table := storage.NewTable("direction", "usd_notional_in",
		"pre_median", "post_median", "median_change_pct",
		"pre_p90", "post_p90", "p90_change_pct", "pre_n", "post_n")
	for _, r := range rows {
		table.Append(r.Direction, r.USDNotionalIn,
			r.PreMedian, r.PostMedian, r.MedianChangePct,
			r.PreP90, r.PostP90, r.P90ChangePct, r.PreN, r.PostN)
	}
	return table
}

// ReadComparisons parses a table written by ComparisonTable.
func ReadComparisons(table *storage.Table) ([]model.SlippageComparison, error) {
	out := make([]model.SlippageComparison, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		r := model.SlippageComparison{Direction: row.String("direction")}
		floats := []struct {
			column string
			dst    *float64
		}{
			{"usd_notional_in", &r.USDNotionalIn},
			{"pre_median", &r.PreMedian},
			{"post_median", &r.PostMedian},
			{"median_change_pct", &r.MedianChangePct},
			{"pre_p90", &r.PreP90},
			{"post_p90", &r.PostP90},
			{"p90_change_pct", &r.P90ChangePct},
		}
		for _, f := range floats {
			v, err := row.Float(f.column)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			*f.dst = v
		}
		preN, err := row.Int("pre_n")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		postN, err := row.Int("post_n")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		r.PreN, r.PostN = int(preN), int(postN)
		out = append(out, r)
	}
	return out, nil
}

// EthUSDTable renders eth_usd_univ3_slot0.csv.
func EthUSDTable(points []model.EthUSDPoint) *storage.Table {
	table := storage.NewTable("block_number", "timestamp", "datetime_utc", "sqrtPriceX96", "eth_usd")
	for _, p := range points {
		table.Append(p.BlockNumber, p.Timestamp, p.DatetimeUTC, p.SqrtPriceX96, p.EthUSD)
	}
	return table
}

// ReadEthUSD parses a table written by EthUSDTable. Rows with an empty price are skipped.
func ReadEthUSD(table *storage.Table) ([]model.EthUSDPoint, error) {
	if !table.HasColumn("eth_usd") {
		return nil, fmt.Errorf("eth/usd table has no eth_usd column")
	}
	out := make([]model.EthUSDPoint, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		block, err := row.Uint("block_number")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		price, err := row.Float("eth_usd")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if !positive(price) {
			continue
		}
		ts, _ := row.Uint("timestamp")
		out = append(out, model.EthUSDPoint{
			BlockNumber:  block,
			Timestamp:    ts,
			DatetimeUTC:  row.String("datetime_utc"),
			SqrtPriceX96: row.String("sqrtPriceX96"),
			EthUSD:       price,
		})
	}
	return out, nil
}

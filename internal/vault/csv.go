package vault

import (
	"fmt"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

var sampleColumns = []string{
	"block_number", "timestamp", "datetime_utc",
	"vault_underlying0_raw", "vault_underlying1_raw",
	"underlying_mapping_mode", "mapping_ambiguous", "mapping_flip", "base_symbol",
	"amt_eth", "amt_base", "eth_usd", "spot_base_per_eth", "spot_eth_per_base", "base_usd",
	"value_eth_usd", "value_base_usd", "value_total_usd",
	"hold_value_usd", "full_range_lp_amt_eth", "full_range_lp_amt_base", "full_range_lp_value_usd",
	"vault_value_index", "hold_value_index", "full_range_lp_value_index",
}

// SampleTable renders vault_timeseries.csv.
func SampleTable(samples []model.VaultSample) *storage.Table {
	table := storage.NewTable(sampleColumns...)
	for _, s := range samples {
		table.Append(
			s.BlockNumber, s.Timestamp, s.DatetimeUTC,
			s.Underlying0Raw, s.Underlying1Raw,
			s.MappingMode, s.MappingAmbiguous, s.MappingFlip, s.BaseSymbol,
			s.AmtETH, s.AmtBase, s.EthUSD, s.SpotBasePerETH, s.SpotETHPerBase, s.BaseUSD,
			s.ValueETHUSD, s.ValueBaseUSD, s.ValueTotalUSD,
			s.HoldValueUSD, s.FullRangeAmtETH, s.FullRangeAmtBase, s.FullRangeValueUSD,
			s.VaultIndex, s.HoldIndex, s.FullRangeIndex,
		)
	}
	return table
}

// ReadSamples parses a table written by SampleTable.
func ReadSamples(table *storage.Table) ([]model.VaultSample, error) {
	out := make([]model.VaultSample, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		s := model.VaultSample{
			DatetimeUTC:      row.String("datetime_utc"),
			Underlying0Raw:   row.String("vault_underlying0_raw"),
			Underlying1Raw:   row.String("vault_underlying1_raw"),
			MappingMode:      row.String("underlying_mapping_mode"),
			MappingAmbiguous: row.Bool("mapping_ambiguous"),
			MappingFlip:      row.Bool("mapping_flip"),
			BaseSymbol:       row.String("base_symbol"),
		}
		var err error
		if s.BlockNumber, err = row.Uint("block_number"); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if s.Timestamp, err = row.Uint("timestamp"); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		floats := []struct {
			column string
			dst    *float64
		}{
			{"amt_eth", &s.AmtETH},
			{"amt_base", &s.AmtBase},
			{"eth_usd", &s.EthUSD},
			{"spot_base_per_eth", &s.SpotBasePerETH},
			{"spot_eth_per_base", &s.SpotETHPerBase},
			{"base_usd", &s.BaseUSD},
			{"value_eth_usd", &s.ValueETHUSD},
			{"value_base_usd", &s.ValueBaseUSD},
			{"value_total_usd", &s.ValueTotalUSD},
			{"hold_value_usd", &s.HoldValueUSD},
			{"full_range_lp_amt_eth", &s.FullRangeAmtETH},
			{"full_range_lp_amt_base", &s.FullRangeAmtBase},
			{"full_range_lp_value_usd", &s.FullRangeValueUSD},
			{"vault_value_index", &s.VaultIndex},
			{"hold_value_index", &s.HoldIndex},
			{"full_range_lp_value_index", &s.FullRangeIndex},
		}
		for _, f := range floats {
			if *f.dst, err = row.Float(f.column); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// SummaryTable renders vault_performance_summary.csv.
func SummaryTable(s model.VaultSummary) *storage.Table {
	table := storage.NewTable(
		"t0_datetime_utc", "t1_datetime_utc", "vault_value_usd_t0", "vault_value_usd_t1",
		"vault_index_t1", "hold_index_t1", "full_range_lp_index_t1",
		"amt_eth_t0", "amt_eth_t1", "amt_base_t0", "amt_base_t1",
		"base_symbol", "mapping_mode", "mapping_flips", "samples",
	)
	table.Append(
		s.T0DatetimeUTC, s.T1DatetimeUTC, s.ValueUSDT0, s.ValueUSDT1,
		s.VaultIndexT1, s.HoldIndexT1, s.FullRangeIndexT1,
		s.AmtETHT0, s.AmtETHT1, s.AmtBaseT0, s.AmtBaseT1,
		s.BaseSymbol, s.MappingMode, s.MappingFlips, s.Samples,
	)
	return table
}

// ReadSummary parses the single row written by SummaryTable.
func ReadSummary(table *storage.Table) (model.VaultSummary, error) {
	if table.Len() != 1 {
		return model.VaultSummary{}, fmt.Errorf("vault summary has %d rows, want 1", table.Len())
	}
	row := table.Row(0)
	s := model.VaultSummary{
		T0DatetimeUTC: row.String("t0_datetime_utc"),
		T1DatetimeUTC: row.String("t1_datetime_utc"),
		BaseSymbol:    row.String("base_symbol"),
		MappingMode:   row.String("mapping_mode"),
	}
	floats := []struct {
		column string
		dst    *float64
	}{
		{"vault_value_usd_t0", &s.ValueUSDT0},
		{"vault_value_usd_t1", &s.ValueUSDT1},
		{"vault_index_t1", &s.VaultIndexT1},
		{"hold_index_t1", &s.HoldIndexT1},
		{"full_range_lp_index_t1", &s.FullRangeIndexT1},
		{"amt_eth_t0", &s.AmtETHT0},
		{"amt_eth_t1", &s.AmtETHT1},
		{"amt_base_t0", &s.AmtBaseT0},
		{"amt_base_t1", &s.AmtBaseT1},
	}
	for _, f := range floats {
		v, err := row.Float(f.column)
		if err != nil {
			return model.VaultSummary{}, err
		}
		*f.dst = v
	}
	flips, err := row.Int("mapping_flips")
	if err != nil {
		return model.VaultSummary{}, err
	}
	samples, err := row.Int("samples")
	if err != nil {
		return model.VaultSummary{}, err
	}
	s.MappingFlips, s.Samples = int(flips), int(samples)
	return s, nil
}

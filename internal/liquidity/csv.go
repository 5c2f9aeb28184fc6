package liquidity

import (
	"fmt"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

// RangeTable renders univ4_active_ranges.csv from sorted ranges.
func RangeTable(ranges []model.TickRange) *storage.Table {
	table := storage.NewTable("range_index", "tickLower", "tickUpper", "width", "mid_tick")
	for i, r := range ranges {
		table.Append(i, r.TickLower, r.TickUpper, r.Width(), r.Mid())
	}
	return table
}

// CoverageTable renders univ4_range_coverage.csv.
func CoverageTable(bins []model.CoverageBin) *storage.Table {
	table := storage.NewTable("tick", "active_range_coverage_count")
	for _, b := range bins {
		table.Append(b.Tick, b.Count)
	}
	return table
}

// ReadCoverage parses a table written by CoverageTable.
func ReadCoverage(table *storage.Table) ([]model.CoverageBin, error) {
	out := make([]model.CoverageBin, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		tick, err := row.Int("tick")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		count, err := row.Int("active_range_coverage_count")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, model.CoverageBin{Tick: int32(tick), Count: int(count)})
	}
	return out, nil
}

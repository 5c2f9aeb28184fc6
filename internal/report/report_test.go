package report

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

func TestRenderExecution(t *testing.T) {
	tick := int32(7000)
	data := Execution{
		GeneratedAt: "2025-01-01T00:00:00Z",
		PairLabel:   "IXS/WETH",
		Migration: model.MigrationRecord{
			Source: "0xpair",
			Rule:   model.MigrationRule{Description: "largest confirmed drop"},
			Selected: model.MigrationSelection{
				MigrationBlock: 21_000_000,
				SelectedBy:     "quote_reserve_drop_confirmed_by_destination_liquidity",
				DropFraction:   0.93,
				Confirming:     model.EventRef{Event: "Burn", BlockNumber: 21_000_000, TxHash: "0xabc", LogIndex: 4, Amount: "42"},
			},
			Supporting: model.MigrationSupport{RegimeChange: &model.RegimeChange{BlockEstimate: 20_999_900, Confidence: "medium"}},
		},
		Comparisons: []model.SlippageComparison{
			{Direction: "IXS->ETH", USDNotionalIn: 1000, PreMedian: 0.1871, PostMedian: 0.1529, MedianChangePct: (0.1529 - 0.1871) / 0.1871 * 100, PreP90: 1, PostP90: math.NaN(), P90ChangePct: math.NaN(), PreN: 800, PostN: 0},
		},
		SlippageFigures: []string{"execution_quality_slippage_IXS_to_ETH.png"},
		Liquidity: &Coverage{
			Snapshot: model.LiquiditySnapshot{
				BlockNumber:          22_000_000,
				Token0:               model.TokenMeta{Symbol: "ETH"},
				Token1:               model.TokenMeta{Symbol: "IXS"},
				Ranges:               []model.TickRange{{TickLower: 6000, TickUpper: 8000}},
				BinWidth:             200,
				EstimatedTickSnapped: &tick,
			},
			Bins:           11,
			MaxCount:       1,
			Marker:         "7000",
			RangesFigure:   "univ4_active_ranges.png",
			CoverageFigure: "univ4_liquidity_distribution_coverage.png",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderExecution(&buf, data))
	out := buf.String()

	assert.Contains(t, out, "# Execution quality: IXS/WETH migration")
	assert.Contains(t, out, "| Migration block | 21000000 |")
	assert.Contains(t, out, "| Reserve drop | 93.0% |")
	assert.Contains(t, out, "Burn at block 21000000, tx `0xabc` log 4, amount 42")
	assert.Contains(t, out, "| Destination event | n/a |")
	assert.Contains(t, out, "block 20999900")
	assert.Contains(t, out, "| IXS->ETH | $1000 | 0.1871 | 0.1529 | -18.3% | 1.0000 | n/a | n/a | 800 | 0 |")
	assert.Contains(t, out, "![execution_quality_slippage_IXS_to_ETH.png](../figures/execution_quality_slippage_IXS_to_ETH.png)")
	assert.Contains(t, out, "| 0 | 6000 | 8000 | 2000 |")
	assert.Contains(t, out, "Estimated current tick: 7000")
}

func TestRenderExecutionWithoutLiquidity(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderExecution(&buf, Execution{PairLabel: "IXS/WETH"}))
	assert.NotContains(t, buf.String(), "## Liquidity coverage")
}

func TestRenderVault(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderVault(&buf, Vault{
		Vault: "0xvault",
		Summary: model.VaultSummary{
			BaseSymbol:       "IXS",
			ValueUSDT0:       4000,
			ValueUSDT1:       6000,
			VaultIndexT1:     1.5,
			HoldIndexT1:      1.75,
			FullRangeIndexT1: math.NaN(),
			MappingMode:      model.MappingETH0Base1,
			MappingFlips:     1,
			Samples:          3,
		},
		Figures: []string{"vault_performance_index.png"},
	}))
	out := buf.String()
	assert.Contains(t, out, "| Vault value (USD) | $4000 | $6000 |")
	assert.Contains(t, out, "| Vault | 1.5000 |")
	assert.Contains(t, out, "| Full-range LP, no fees | n/a |")
	assert.Contains(t, out, "| IXS amount |")
	assert.Contains(t, out, "`u0_eth_u1_base`")
	assert.Contains(t, out, "(1 flips over 3 samples)")
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "-18.3%", formatChange(-18.278))
	assert.Equal(t, "+5.0%", formatChange(5))
	assert.Equal(t, "n/a", formatChange(math.NaN()))
}

package charts

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

func requirePNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

func TestSlippageChart(t *testing.T) {
	pre := []model.SlippageObservation{
		{Timestamp: 1_700_000_000, Direction: "IXS->WETH", USDNotionalIn: 1000, SlippagePct: 0.5},
		{Timestamp: 1_700_003_600, Direction: "IXS->WETH", USDNotionalIn: 1000, SlippagePct: 0.6},
		{Timestamp: 1_700_000_000, Direction: "WETH->IXS", USDNotionalIn: 1000, SlippagePct: 0.4},
	}
	post := []model.SlippageObservation{
		{Timestamp: 1_710_000_000, Direction: "IXS->ETH", USDNotionalIn: 5000, SlippagePct: 0.2},
		{Timestamp: 1_710_003_600, Direction: "IXS->ETH", USDNotionalIn: 5000, SlippagePct: math.NaN()},
	}
	path := filepath.Join(t.TempDir(), "slippage.png")
	require.NoError(t, Slippage(path, "IXS->ETH", pre, post))
	requirePNG(t, path)

	err := Slippage(path, "USDC->ETH", pre, post)
	require.ErrorIs(t, err, ErrNoData)
}

func TestLiquidityCharts(t *testing.T) {
	dir := t.TempDir()
	tick := int32(6800)
	snap := model.LiquiditySnapshot{
		Token0: model.TokenMeta{Symbol: "ETH"},
		Token1: model.TokenMeta{Symbol: "IXS"},
		Ranges: []model.TickRange{{TickLower: 6000, TickUpper: 8000}, {TickLower: 5000, TickUpper: 9000}},
	}
	require.NoError(t, ActiveRanges(filepath.Join(dir, "ranges.png"), snap, &tick))
	requirePNG(t, filepath.Join(dir, "ranges.png"))

	bins := []model.CoverageBin{{Tick: 5000, Count: 1}, {Tick: 6000, Count: 2}, {Tick: 8000, Count: 1}, {Tick: 9000, Count: 0}}
	require.NoError(t, Coverage(filepath.Join(dir, "coverage.png"), bins, nil))
	requirePNG(t, filepath.Join(dir, "coverage.png"))

	require.ErrorIs(t, Coverage(filepath.Join(dir, "empty.png"), nil, nil), ErrNoData)
	require.ErrorIs(t, ActiveRanges(filepath.Join(dir, "empty.png"), model.LiquiditySnapshot{}, nil), ErrNoData)
}

func TestVaultCharts(t *testing.T) {
	dir := t.TempDir()
	samples := []model.VaultSample{
		{Timestamp: 1_720_000_000, BaseSymbol: "IXS", AmtETH: 1, AmtBase: 1000, ValueETHUSD: 2000, ValueBaseUSD: 2000, VaultIndex: 1, HoldIndex: 1, FullRangeIndex: math.NaN()},
		{Timestamp: 1_720_086_400, BaseSymbol: "IXS", AmtETH: 1.2, AmtBase: 900, ValueETHUSD: 2400, ValueBaseUSD: 1900, VaultIndex: 1.075, HoldIndex: 1.02, FullRangeIndex: math.NaN()},
	}
	for name, render := range map[string]func(string, []model.VaultSample) error{
		"amounts.png": VaultAmounts,
		"value.png":   VaultValue,
		"indices.png": VaultIndices,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, render(path, samples), name)
		requirePNG(t, path)
		require.ErrorIs(t, render(path, nil), ErrNoData)
	}
}

package vault

import (
	"context"
	"errors"
	"math"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kuber-code/Arrakis-Assessment/internal/dex"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

var (
	ixs = model.TokenMeta{Address: "0x73d7c860998CA3c01Ce8c808F5577d94d545d1b4", Symbol: "IXS", Decimals: 18}
	eth = model.TokenMeta{Address: model.NativeCurrency, Symbol: "ETH", Decimals: 18}
)

// units returns n * 10^decimals.
func units(n int64, decimals int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(decimals), nil))
}

func TestDecomposePicksClosestToSpot(t *testing.T) {
	d := Decompose(units(1000, 18), units(1, 18), ixs, eth, 1000, math.NaN())
	assert.Equal(t, model.MappingBase0ETH1, d.Mode)
	assert.False(t, d.Ambiguous)
	assert.InDelta(t, 1000, d.AmtBase, 1e-9)
	assert.InDelta(t, 1, d.AmtETH, 1e-12)

	d = Decompose(units(1, 18), units(1000, 18), ixs, eth, 1000, math.NaN())
	assert.Equal(t, model.MappingETH0Base1, d.Mode)
	assert.InDelta(t, 1000, d.AmtBase, 1e-9)
	assert.False(t, d.BaseFirst())
}

func TestDecomposeScalesByAssignedDecimals(t *testing.T) {
	usdLike := model.TokenMeta{Address: "0x01", Symbol: "B6", Decimals: 6}
	d := Decompose(units(1000, 6), units(1, 18), usdLike, eth, 1000, math.NaN())
	assert.Equal(t, model.MappingBase0ETH1, d.Mode)
	assert.InDelta(t, 1000, d.AmtBase, 1e-9)
}

func TestDecomposeTieUsesHistory(t *testing.T) {
	// ratios 4 and 0.25 are equally far from a spot of 1
	u0, u1 := units(4, 18), units(1, 18)

	d := Decompose(u0, u1, ixs, eth, 1, 3)
	assert.Equal(t, model.MappingBase0ETH1, d.Mode)
	assert.True(t, d.Ambiguous)

	d = Decompose(u0, u1, ixs, eth, 1, 0.3)
	assert.Equal(t, model.MappingETH0Base1, d.Mode)
	assert.True(t, d.Ambiguous)

	d = Decompose(u0, u1, ixs, eth, 1, math.NaN())
	assert.Equal(t, model.MappingAssumeBase0, d.Mode)
	assert.True(t, d.Ambiguous)
	assert.True(t, d.BaseFirst())
}

func TestDecomposeInvalidInputs(t *testing.T) {
	d := Decompose(big.NewInt(0), units(1, 18), ixs, eth, 1000, math.NaN())
	assert.Equal(t, model.MappingAssumeBase0, d.Mode)
	assert.True(t, d.Ambiguous)

	// no spot: history decides
	d = Decompose(units(1, 18), units(1000, 18), ixs, eth, 0, 900)
	assert.Equal(t, model.MappingETH0Base1, d.Mode)
	assert.True(t, d.Ambiguous)
}

func baselineSamples() []model.VaultSample {
	return []model.VaultSample{
		{BlockNumber: 1, AmtETH: 1, AmtBase: 1000, EthUSD: 2000, SpotETHPerBase: 0.001, BaseUSD: 2, ValueETHUSD: 2000, ValueBaseUSD: 2000, ValueTotalUSD: 4000, MappingMode: model.MappingBase0ETH1},
		{BlockNumber: 2, AmtETH: 1.5, AmtBase: 600, EthUSD: 2000, SpotETHPerBase: 0.0025, BaseUSD: 5, ValueETHUSD: 3000, ValueBaseUSD: 3000, ValueTotalUSD: 6000, MappingMode: model.MappingBase0ETH1},
	}
}

func TestApplyBaselines(t *testing.T) {
	samples := baselineSamples()
	require.NoError(t, ApplyBaselines(samples))

	assert.Equal(t, 1.0, samples[0].VaultIndex)
	assert.Equal(t, 1.0, samples[0].HoldIndex)
	assert.Equal(t, 1.0, samples[0].FullRangeIndex)

	assert.InDelta(t, 1.5, samples[1].VaultIndex, 1e-12)
	assert.InDelta(t, 7000, samples[1].HoldValueUSD, 1e-9)
	assert.InDelta(t, 1.75, samples[1].HoldIndex, 1e-12)

	assert.InDelta(t, math.Sqrt(400_000), samples[1].FullRangeAmtBase, 1e-9)
	assert.InDelta(t, math.Sqrt(2.5), samples[1].FullRangeAmtETH, 1e-12)
	assert.InDelta(t, 2*math.Sqrt(2.5)*2000/4000, samples[1].FullRangeIndex, 1e-9)

	for _, s := range samples {
		assert.GreaterOrEqual(t, s.VaultIndex, 0.0)
		assert.GreaterOrEqual(t, s.HoldIndex, 0.0)
		assert.GreaterOrEqual(t, s.FullRangeIndex, 0.0)
	}
}

func TestApplyBaselinesWithoutETHAtInception(t *testing.T) {
	samples := baselineSamples()
	samples[0].AmtETH, samples[0].ValueETHUSD, samples[0].ValueTotalUSD = 0, 0, 2000
	require.NoError(t, ApplyBaselines(samples))

	assert.Equal(t, 1.0, samples[0].VaultIndex)
	assert.InDelta(t, 3, samples[1].VaultIndex, 1e-12)
	assert.True(t, math.IsNaN(samples[1].FullRangeValueUSD))
	assert.True(t, math.IsNaN(samples[1].FullRangeIndex))
	assert.InDelta(t, 2.5, samples[1].HoldIndex, 1e-12)
}

func TestApplyBaselinesRejectsEmptyInception(t *testing.T) {
	samples := baselineSamples()
	samples[0].ValueTotalUSD = 0
	require.Error(t, ApplyBaselines(samples))
	require.Error(t, ApplyBaselines(nil))
}

func TestSummarize(t *testing.T) {
	samples := baselineSamples()
	samples = append(samples, samples[1])
	samples[2].MappingMode = model.MappingETH0Base1
	samples[2].MappingFlip = true
	require.NoError(t, ApplyBaselines(samples))

	summary, err := Summarize(samples)
	require.NoError(t, err)
	assert.Equal(t, model.MappingBase0ETH1, summary.MappingMode)
	assert.Equal(t, 1, summary.MappingFlips)
	assert.Equal(t, 3, summary.Samples)
	assert.Equal(t, 4000.0, summary.ValueUSDT0)
	assert.Equal(t, 6000.0, summary.ValueUSDT1)
	assert.InDelta(t, 1.5, summary.VaultIndexT1, 1e-12)

	_, err = Summarize(nil)
	require.Error(t, err)
}

func TestSummarizeCountsOrientation(t *testing.T) {
	modes := []string{
		model.MappingBase0ETH1, model.MappingBase0ETH1,
		model.MappingAssumeBase0, model.MappingAssumeBase0,
		model.MappingETH0Base1, model.MappingETH0Base1, model.MappingETH0Base1,
	}
	samples := make([]model.VaultSample, len(modes))
	for i, m := range modes {
		samples[i].MappingMode = m
	}
	summary, err := Summarize(samples)
	require.NoError(t, err)
	assert.Equal(t, model.MappingBase0ETH1, summary.MappingMode)

	samples = append(samples, model.VaultSample{MappingMode: model.MappingETH0Base1}, model.VaultSample{MappingMode: model.MappingETH0Base1})
	summary, err = Summarize(samples)
	require.NoError(t, err)
	assert.Equal(t, model.MappingETH0Base1, summary.MappingMode)

	summary, err = Summarize([]model.VaultSample{{MappingMode: model.MappingAssumeBase0}, {}})
	require.NoError(t, err)
	assert.Equal(t, model.MappingAssumeBase0, summary.MappingMode)
}

type fakeChain struct{ latest uint64 }

func (c fakeChain) LatestBlockNumber(context.Context) (uint64, error) { return c.latest, nil }

func (c fakeChain) BlockTimestamp(_ context.Context, n uint64) (uint64, error) {
	return 1_720_000_000 + n*12, nil
}

type fixedPrice float64

func (p fixedPrice) At(_ context.Context, block uint64) (model.EthUSDPoint, error) {
	return model.EthUSDPoint{BlockNumber: block, EthUSD: float64(p)}, nil
}

type scriptedVault map[uint64][2]*big.Int

func (v scriptedVault) TotalUnderlying(_ context.Context, block uint64) (*big.Int, *big.Int, error) {
	pair, ok := v[block]
	if !ok {
		return nil, nil, errors.New("execution reverted")
	}
	return pair[0], pair[1], nil
}

// thousandQuoter sells 1 ETH for 1000 IXS with no fee.
type thousandQuoter struct{}

func (thousandQuoter) QuoteExactInputSingle(_ context.Context, _ model.PoolKey, tokenIn string, amountIn *big.Int, _ uint64) (dex.Quote, error) {
	if model.SameAddress(tokenIn, model.NativeCurrency) {
		return dex.Quote{AmountOut: new(big.Int).Mul(amountIn, big.NewInt(1000))}, nil
	}
	return dex.Quote{AmountOut: new(big.Int).Quo(amountIn, big.NewInt(1000))}, nil
}

func TestSamplerTracksFlipsAndDrops(t *testing.T) {
	key := model.PoolKey{Currency0: model.NativeCurrency, Currency1: ixs.Address, TickSpacing: 200, Hooks: model.NativeCurrency}
	vault := scriptedVault{
		100:  {units(1000, 18), units(1, 18)},
		400:  {units(1, 18), units(1200, 18)},
		1000: {units(1100, 18), units(1, 18)},
	}
	sampler, err := NewSampler(fakeChain{latest: 1000}, fixedPrice(2000), vault, thousandQuoter{}, key, ixs, eth, Config{MigrationBlock: 100, Stride: 300}, nil)
	require.NoError(t, err)

	samples, stats, err := sampler.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Blocks: 4, Samples: 3, Dropped: 1, Flips: 2}, stats)
	require.Len(t, samples, 3)

	first := samples[0]
	assert.Equal(t, model.MappingBase0ETH1, first.MappingMode)
	assert.Equal(t, 1.0, first.VaultIndex)
	assert.InDelta(t, 1000, first.SpotBasePerETH, 1e-9)
	assert.InDelta(t, 2, first.BaseUSD, 1e-12)
	assert.InDelta(t, 4000, first.ValueTotalUSD, 1e-9)
	assert.Equal(t, "IXS", first.BaseSymbol)

	assert.Equal(t, model.MappingETH0Base1, samples[1].MappingMode)
	assert.True(t, samples[1].MappingFlip)
	assert.InDelta(t, 1200, samples[1].AmtBase, 1e-9)
	assert.InDelta(t, 1.1, samples[1].VaultIndex, 1e-12)

	assert.True(t, samples[2].MappingFlip)
	assert.Equal(t, uint64(1000), samples[2].BlockNumber)
}

func TestSamplerNoSamples(t *testing.T) {
	key := model.PoolKey{Currency0: model.NativeCurrency, Currency1: ixs.Address}
	sampler, err := NewSampler(fakeChain{latest: 10}, fixedPrice(2000), scriptedVault{}, thousandQuoter{}, key, ixs, eth, Config{Stride: 5}, nil)
	require.NoError(t, err)
	_, stats, err := sampler.Sample(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, stats.Dropped)
}

func TestSampleTableRoundTrip(t *testing.T) {
	samples := baselineSamples()
	samples[0].MappingFlip = true
	samples[0].BaseSymbol = "IXS"
	samples[0].Underlying0Raw = "1000000000000000000000"
	require.NoError(t, ApplyBaselines(samples))

	dir := t.TempDir()
	path := filepath.Join(dir, "vault.csv")
	require.NoError(t, storage.WriteCSV(path, SampleTable(samples)))
	table, err := storage.ReadCSV(path)
	require.NoError(t, err)
	back, err := ReadSamples(table)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.True(t, back[0].MappingFlip)
	assert.Equal(t, "IXS", back[0].BaseSymbol)
	assert.Equal(t, samples[0].Underlying0Raw, back[0].Underlying0Raw)
	assert.InDelta(t, samples[1].FullRangeIndex, back[1].FullRangeIndex, 1e-12)

	summary, err := Summarize(back)
	require.NoError(t, err)
	path = filepath.Join(dir, "summary.csv")
	require.NoError(t, storage.WriteCSV(path, SummaryTable(summary)))
	table, err = storage.ReadCSV(path)
	require.NoError(t, err)
	got, err := ReadSummary(table)
	require.NoError(t, err)
	assert.Equal(t, summary, got)
}

package slippage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

const testWETH = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"

func testPair() model.PairMetadata {
	return model.PairMetadata{
		Pair:   "0xC09bf2B1Bc8725903C509e8CAeef9190857215A8",
		Token0: model.PairToken{TokenMeta: model.TokenMeta{Address: "0x73d7c860998CA3c01Ce8c808F5577d94d545d1b4", Symbol: "IXS", Decimals: 18}},
		Token1: model.PairToken{TokenMeta: model.TokenMeta{Address: testWETH, Symbol: "WETH", Decimals: 18}},
	}
}

func syncAt(block uint64, reserveIXS, reserveWETH float64) model.SyncPoint {
	return model.SyncPoint{BlockNumber: block, Timestamp: 1_700_000_000 + block*12, Reserve0: reserveIXS, Reserve1: reserveWETH}
}

func TestSamplePrePricesWithLatestEthUSD(t *testing.T) {
	points := []model.SyncPoint{
		syncAt(3, 1_000_000, 100), // no price yet
		syncAt(10, 1_000_000, 100),
		syncAt(20, 0, 100), // empty reserve
		syncAt(30, 1_000_000, 100),
		syncAt(50, 1_000_000, 100), // at the migration block
	}
	prices := []model.EthUSDPoint{
		{BlockNumber: 25, EthUSD: 3000},
		{BlockNumber: 5, EthUSD: 2000},
	}

	obs, stats, err := SamplePre(points, prices, testPair(), PreConfig{
		MigrationBlock: 50,
		Sizes:          []float64{1000},
		MaxPoints:      800,
		WETH:           testWETH,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Blocks)
	assert.Equal(t, 4, stats.Observations)
	assert.Equal(t, 2, stats.Dropped)
	require.Len(t, obs, 4)

	sell := obs[0]
	assert.Equal(t, uint64(10), sell.BlockNumber)
	assert.Equal(t, "IXS->WETH", sell.Direction)
	assert.Equal(t, "USD_per_WETH", sell.SpotPriceUnit)
	assert.Equal(t, 2000.0, sell.SpotPrice)
	// base price is 100 / 1e6 * 2000 = 0.2 USD
	assert.InDelta(t, 5000, sell.AmountIn, 1e-9)
	assert.InDelta(t, CPMMOut(5000, 1_000_000, 100, UniV2Fee), sell.AmountOut, 1e-12)
	assert.Equal(t, UniV2Fee, sell.FeeRate)

	buy := obs[1]
	assert.Equal(t, "WETH->IXS", buy.Direction)
	assert.InDelta(t, 0.2, buy.SpotPrice, 1e-12)
	assert.InDelta(t, 0.5, buy.AmountIn, 1e-12)

	assert.Equal(t, uint64(30), obs[2].BlockNumber)
	assert.Equal(t, 3000.0, obs[2].SpotPrice)

	for _, o := range obs {
		assert.False(t, math.IsNaN(o.SlippagePct))
		assert.Greater(t, o.SlippagePct, 0.0)
		assert.NotEmpty(t, o.DatetimeUTC)
	}
}

func TestSamplePreDownsamples(t *testing.T) {
	points := make([]model.SyncPoint, 0, 100)
	for b := uint64(1); b <= 100; b++ {
		points = append(points, syncAt(b, 1_000_000, 100))
	}
	obs, stats, err := SamplePre(points, []model.EthUSDPoint{{BlockNumber: 1, EthUSD: 2000}}, testPair(), PreConfig{
		MigrationBlock: 1000,
		Sizes:          []float64{1000, 5000},
		MaxPoints:      10,
		WETH:           testWETH,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Blocks)
	assert.Len(t, obs, 40)
	assert.Equal(t, uint64(1), obs[0].BlockNumber)
	assert.Equal(t, uint64(100), obs[len(obs)-1].BlockNumber)
}

func TestSamplePreErrors(t *testing.T) {
	_, _, err := SamplePre([]model.SyncPoint{syncAt(10, 1, 1)}, nil, testPair(), PreConfig{MigrationBlock: 50, WETH: testWETH}, nil)
	require.Error(t, err)

	_, _, err = SamplePre([]model.SyncPoint{syncAt(60, 1, 1)}, []model.EthUSDPoint{{BlockNumber: 1, EthUSD: 1}}, testPair(), PreConfig{MigrationBlock: 50, WETH: testWETH}, nil)
	require.Error(t, err)

	_, _, err = SamplePre(nil, nil, testPair(), PreConfig{WETH: "0x0000000000000000000000000000000000000001"}, nil)
	require.Error(t, err)
}

package slippage

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
	ixsToken = model.TokenMeta{Address: "0x73d7c860998CA3c01Ce8c808F5577d94d545d1b4", Symbol: "IXS", Decimals: 18}
	ethToken = model.TokenMeta{Address: model.NativeCurrency, Symbol: "ETH", Decimals: 18}
	testKey  = model.PoolKey{Currency0: model.NativeCurrency, Currency1: ixsToken.Address, Fee: 10_000, TickSpacing: 200, Hooks: model.NativeCurrency}
)

type fakeChain struct {
	latest uint64
}

func (c fakeChain) LatestBlockNumber(context.Context) (uint64, error) { return c.latest, nil }

func (c fakeChain) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	return 1_720_000_000 + number*12, nil
}

type fakePrices struct {
	failAt uint64
}

func (p fakePrices) At(_ context.Context, block uint64) (model.EthUSDPoint, error) {
	if block == p.failAt {
		return model.EthUSDPoint{}, errors.New("slot0 reverted")
	}
	return model.EthUSDPoint{BlockNumber: block, EthUSD: 2000}, nil
}

// linearQuoter prices IXS at 0.0001 ETH with a 1% fee and no price impact, except that
// ETH inputs fail at failBuyAt.
type linearQuoter struct {
	failBuyAt uint64
	calls     int
}

func (q *linearQuoter) QuoteExactInputSingle(_ context.Context, _ model.PoolKey, tokenIn string, amountIn *big.Int, block uint64) (dex.Quote, error) {
	q.calls++
	out := new(big.Int)
	if model.SameAddress(tokenIn, ixsToken.Address) {
		out.Mul(amountIn, big.NewInt(99))
		out.Quo(out, big.NewInt(1_000_000))
	} else {
		if block == q.failBuyAt {
			return dex.Quote{}, errors.New("execution reverted")
		}
		out.Mul(amountIn, big.NewInt(9_900))
	}
	return dex.Quote{AmountOut: out, GasEstimate: big.NewInt(120_000)}, nil
}

func TestPostSamplerStridesAndDropsFailures(t *testing.T) {
	quoter := &linearQuoter{failBuyAt: 400}
	sampler, err := NewPostSampler(fakeChain{latest: 1000}, fakePrices{failAt: 700}, quoter, testKey, ixsToken, ethToken, PostConfig{
		MigrationBlock: 100,
		Stride:         300,
		Sizes:          []float64{1000},
	}, nil)
	require.NoError(t, err)

	obs, stats, err := sampler.Sample(context.Background())
	require.NoError(t, err)

	// blocks 100, 400, 700, 1000; 700 has no price and 400 loses its ETH->IXS quote
	assert.Equal(t, 3, stats.Blocks)
	assert.Equal(t, 5, stats.Observations)
	assert.Equal(t, 3, stats.Dropped)
	require.Len(t, obs, 5)

	blocks := make([]uint64, 0, len(obs))
	for _, o := range obs {
		blocks = append(blocks, o.BlockNumber)
		assert.False(t, math.IsNaN(o.SlippagePct))
		assert.Equal(t, uint32(10_000), o.FeeUint24)
		assert.Equal(t, int32(200), o.TickSpacing)
		assert.Equal(t, uint64(120_000), o.GasEstimate)
		assert.Equal(t, 0.01, o.FeeRate)
	}
	assert.Equal(t, []uint64{100, 100, 400, 1000, 1000}, blocks)

	sell := obs[0]
	assert.Equal(t, "IXS->ETH", sell.Direction)
	assert.Equal(t, "USD_per_ETH", sell.SpotPriceUnit)
	assert.Equal(t, 2000.0, sell.SpotPrice)
	// 1000 USD at 0.2 USD per IXS
	assert.InDelta(t, 5000, sell.AmountIn, 1e-6)
	// without price impact only the fee gap remains: 1/0.99 - 1 - 1%
	assert.InDelta(t, 100/0.99-100-1, sell.SlippagePct, 1e-6)

	buy := obs[1]
	assert.Equal(t, "ETH->IXS", buy.Direction)
	assert.InDelta(t, 0.2, buy.SpotPrice, 1e-9)
	assert.InDelta(t, 0.5, buy.AmountIn, 1e-12)
}

func TestPostSamplerRejectsForeignTokens(t *testing.T) {
	other := model.TokenMeta{Address: "0x0000000000000000000000000000000000000009", Symbol: "X", Decimals: 18}
	_, err := NewPostSampler(fakeChain{}, fakePrices{}, &linearQuoter{}, testKey, other, ethToken, PostConfig{Stride: 1}, nil)
	require.Error(t, err)

	_, err = NewPostSampler(fakeChain{}, fakePrices{}, &linearQuoter{}, testKey, ixsToken, ethToken, PostConfig{}, nil)
	require.Error(t, err)
}

func TestObservationTableRoundTrip(t *testing.T) {
	sampler, err := NewPostSampler(fakeChain{latest: 200}, fakePrices{}, &linearQuoter{}, testKey, ixsToken, ethToken, PostConfig{
		MigrationBlock: 100,
		Stride:         300,
		Sizes:          []float64{1000, 5000},
	}, nil)
	require.NoError(t, err)
	obs, _, err := sampler.Sample(context.Background())
	require.NoError(t, err)
	require.Len(t, obs, 8)

	path := filepath.Join(t.TempDir(), "post.csv")
	require.NoError(t, storage.WriteCSV(path, ObservationTable(obs, true)))
	table, err := storage.ReadCSV(path)
	require.NoError(t, err)
	back, err := ReadObservations(table)
	require.NoError(t, err)
	require.Len(t, back, len(obs))
	for i := range obs {
		assert.Equal(t, obs[i].BlockNumber, back[i].BlockNumber)
		assert.Equal(t, obs[i].Direction, back[i].Direction)
		assert.Equal(t, obs[i].FeeUint24, back[i].FeeUint24)
		assert.Equal(t, obs[i].Hooks, back[i].Hooks)
		assert.InDelta(t, obs[i].SlippagePct, back[i].SlippagePct, 1e-12)
	}
}

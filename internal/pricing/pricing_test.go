package pricing

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kuber-code/Arrakis-Assessment/internal/dex"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

var (
	weth = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

func TestToRawFloors(t *testing.T) {
	assert.Equal(t, "1999999", ToRaw(decimal.RequireFromString("1.9999999"), 6).String())
	assert.Equal(t, "0", ToRaw(decimal.RequireFromString("-3"), 18).String())
	assert.Equal(t, "100000000000000", ToRaw(MicroAmount, 18).String())
	assert.Equal(t, "0", ToRawFloat(0, 18).String())
}

// sqrtPriceFor returns sqrt(price * 2^192) for a raw token1/token0 price.
func sqrtPriceFor(rawPrice float64) *big.Int {
	p := new(big.Float).SetPrec(256).SetFloat64(rawPrice)
	p.Mul(p, new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 192)))
	p.Sqrt(p)
	out, _ := p.Int(nil)
	return out
}

type fakePool struct {
	state dex.V3PoolState
}

func (f fakePool) State(context.Context, uint64) (dex.V3PoolState, error) {
	return f.state, nil
}

func TestEthUSDWithUSDCAsToken0(t *testing.T) {
	// 2500 USDC per WETH: raw WETH per raw USDC = 1e12 / 2500.
	sqrtP := sqrtPriceFor(1e12 / 2500)
	oracle := NewEthUSD(fakePool{state: dex.V3PoolState{Token0: usdc, Token1: weth, SqrtPriceX96: sqrtP}}, weth, 18, 6)

	point, err := oracle.At(context.Background(), 100)
	require.NoError(t, err)
	assert.InDelta(t, 2500, point.EthUSD, 1e-6)
	assert.Equal(t, uint64(100), point.BlockNumber)
	assert.Equal(t, sqrtP.String(), point.SqrtPriceX96)
}

func TestEthUSDWithWETHAsToken0(t *testing.T) {
	sqrtP := sqrtPriceFor(2500 / 1e12)
	oracle := NewEthUSD(fakePool{state: dex.V3PoolState{Token0: weth, Token1: usdc, SqrtPriceX96: sqrtP}}, weth, 18, 6)

	point, err := oracle.At(context.Background(), 7)
	require.NoError(t, err)
	assert.InDelta(t, 2500, point.EthUSD, 1e-6)
}

func TestEthUSDRejectsForeignPool(t *testing.T) {
	oracle := NewEthUSD(fakePool{state: dex.V3PoolState{Token0: usdc, Token1: usdc, SqrtPriceX96: big.NewInt(1)}}, weth, 18, 6)
	_, err := oracle.At(context.Background(), 7)
	require.Error(t, err)
}

type fixedQuoter struct {
	out     *big.Int
	gotIn   *big.Int
	gotFrom string
}

func (q *fixedQuoter) QuoteExactInputSingle(_ context.Context, _ model.PoolKey, tokenIn string, amountIn *big.Int, _ uint64) (dex.Quote, error) {
	q.gotIn = amountIn
	q.gotFrom = tokenIn
	return dex.Quote{AmountOut: q.out, GasEstimate: big.NewInt(0)}, nil
}

func TestMicroSpotRemovesFee(t *testing.T) {
	ixs := model.TokenMeta{Address: "0x73d7c860998CA3c01Ce8c808F5577d94d545d1b4", Symbol: "IXS", Decimals: 18}
	eth := model.TokenMeta{Address: model.NativeCurrency, Symbol: "ETH", Decimals: 18}
	key := model.PoolKey{Currency0: eth.Address, Currency1: ixs.Address, Fee: 10_000, TickSpacing: 200}

	// 0.0001 IXS -> 0.00000099 ETH after a 1% fee: spot is 0.0099 / 0.99 = 0.01 ETH per IXS.
	q := &fixedQuoter{out: big.NewInt(990_000_000_000)}
	spot, err := MicroSpot(context.Background(), q, key, ixs, eth, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, spot, 1e-15)
	assert.Equal(t, "100000000000000", q.gotIn.String())
	assert.Equal(t, ixs.Address, q.gotFrom)
}

func TestMicroSpotZeroOutput(t *testing.T) {
	q := &fixedQuoter{out: big.NewInt(0)}
	_, err := MicroSpot(context.Background(), q, model.PoolKey{}, model.TokenMeta{Decimals: 18}, model.TokenMeta{Decimals: 18}, 1)
	require.Error(t, err)
}

func TestPriceFromSqrtX96Identity(t *testing.T) {
	price, err := PriceFromSqrtX96(new(big.Int).Lsh(big.NewInt(1), 96), 18, 18)
	require.NoError(t, err)
	assert.InDelta(t, 1, price, 1e-12)

	_, err = PriceFromSqrtX96(big.NewInt(0), 18, 18)
	require.Error(t, err)
}

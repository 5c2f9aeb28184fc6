package pricing

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/Kuber-code/Arrakis-Assessment/internal/dex"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

var (
	// MicroAmount is the base-token input used to read a pre-fee spot price from a quoter.
	MicroAmount = decimal.New(1, -4)
	// Currency0Amount is the currency0 input of pool-level spot reads.
	Currency0Amount = decimal.New(1, -6)
)

var q192 = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 192))

// ToRaw converts a token amount to its integer representation, rounding toward negative infinity.
// Non-positive amounts give zero.
func ToRaw(amount decimal.Decimal, decimals uint8) *big.Int {
	if amount.Sign() <= 0 {
		return big.NewInt(0)
	}
	return amount.Shift(int32(decimals)).Floor().BigInt()
}

// ToRawFloat is ToRaw for a float amount. Non-finite amounts give zero.
func ToRawFloat(amount float64, decimals uint8) *big.Int {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return big.NewInt(0)
	}
	return ToRaw(decimal.NewFromFloat(amount), decimals)
}

// FromRaw converts an integer token amount to a decimal amount.
func FromRaw(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// PriceFromSqrtX96 returns token1 per token0 in whole-token units for a Uniswap sqrtPriceX96.
func PriceFromSqrtX96(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8) (float64, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return 0, fmt.Errorf("sqrt price must be positive")
	}
	sq := new(big.Float).SetPrec(256).SetInt(sqrtPriceX96)
	raw := new(big.Float).SetPrec(256).Mul(sq, sq)
	raw.Quo(raw, q192)
	scale := new(big.Float).SetPrec(256).SetFloat64(math.Pow10(int(decimals0) - int(decimals1)))
	raw.Mul(raw, scale)
	price, _ := raw.Float64()
	if price <= 0 || math.IsInf(price, 0) {
		return 0, fmt.Errorf("price out of range")
	}
	return price, nil
}

// V3Reader reads a UniV3 pool state at a block.
type V3Reader interface {
	State(ctx context.Context, block uint64) (dex.V3PoolState, error)
}

// EthUSD prices ETH in USD from a WETH/stablecoin UniV3 pool.
type EthUSD struct {
	pool        V3Reader
	weth        common.Address
	wethDecimal uint8
	usdDecimal  uint8
}

func NewEthUSD(pool V3Reader, weth common.Address, wethDecimals, usdDecimals uint8) *EthUSD {
	return &EthUSD{pool: pool, weth: weth, wethDecimal: wethDecimals, usdDecimal: usdDecimals}
}

// ResolveEthUSD looks up the WETH/USD pool for fee through the factory.
func ResolveEthUSD(ctx context.Context, caller dex.ContractCaller, factory, weth, usd common.Address, fee uint32, tokens *dex.TokenMetaCache) (*EthUSD, error) {
	pool, err := dex.ResolveV3Pool(ctx, caller, factory, weth, usd, fee)
	if err != nil {
		return nil, fmt.Errorf("resolve eth/usd pool: %w", err)
	}
	wethMeta, err := tokens.Fetch(ctx, caller, weth, nil)
	if err != nil {
		return nil, err
	}
	usdMeta, err := tokens.Fetch(ctx, caller, usd, nil)
	if err != nil {
		return nil, err
	}
	return NewEthUSD(pool, weth, wethMeta.Decimals, usdMeta.Decimals), nil
}

// At returns the ETH/USD price at block.
func (e *EthUSD) At(ctx context.Context, block uint64) (model.EthUSDPoint, error) {
	state, err := e.pool.State(ctx, block)
	if err != nil {
		return model.EthUSDPoint{}, err
	}
	var price float64
	switch e.weth {
	case state.Token0:
		price, err = PriceFromSqrtX96(state.SqrtPriceX96, e.wethDecimal, e.usdDecimal)
	case state.Token1:
		price, err = PriceFromSqrtX96(state.SqrtPriceX96, e.usdDecimal, e.wethDecimal)
		if err == nil {
			price = 1 / price
		}
	default:
		return model.EthUSDPoint{}, fmt.Errorf("pool %s does not hold weth", state.Pool.Hex())
	}
	if err != nil {
		return model.EthUSDPoint{}, fmt.Errorf("eth/usd at %d: %w", block, err)
	}
	return model.EthUSDPoint{
		BlockNumber:  block,
		SqrtPriceX96: state.SqrtPriceX96.String(),
		EthUSD:       price,
	}, nil
}

// Quoter quotes exact-input swaps through a UniV4 pool.
type Quoter interface {
	QuoteExactInputSingle(ctx context.Context, key model.PoolKey, tokenIn string, amountIn *big.Int, block uint64) (dex.Quote, error)
}

// MicroSpot returns the pre-fee price of tokenIn in tokenOut units from a MicroAmount quote:
// out / (in * (1 - fee)).
func MicroSpot(ctx context.Context, quoter Quoter, key model.PoolKey, tokenIn, tokenOut model.TokenMeta, block uint64) (float64, error) {
	return SpotFromQuote(ctx, quoter, key, tokenIn, tokenOut, MicroAmount, block)
}

// SpotFromQuote is MicroSpot with an explicit input amount. At least one raw unit is quoted.
func SpotFromQuote(ctx context.Context, quoter Quoter, key model.PoolKey, tokenIn, tokenOut model.TokenMeta, amount decimal.Decimal, block uint64) (float64, error) {
	rawIn := ToRaw(amount, tokenIn.Decimals)
	if rawIn.Sign() == 0 {
		rawIn = big.NewInt(1)
	}
	quote, err := quoter.QuoteExactInputSingle(ctx, key, tokenIn.Address, rawIn, block)
	if err != nil {
		return 0, err
	}
	out := FromRaw(quote.AmountOut, tokenOut.Decimals)
	in := FromRaw(rawIn, tokenIn.Decimals)
	if out.Sign() <= 0 || in.Sign() <= 0 {
		return 0, fmt.Errorf("micro quote returned no output")
	}
	feeRate := decimal.NewFromInt(int64(key.Fee)).Shift(-6)
	denom := in.Mul(decimal.NewFromInt(1).Sub(feeRate))
	if denom.Sign() <= 0 {
		return 0, fmt.Errorf("fee rate %s leaves no input", feeRate)
	}
	spot, _ := out.DivRound(denom, 30).Float64()
	return spot, nil
}

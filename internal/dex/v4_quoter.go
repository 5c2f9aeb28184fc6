package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

type poolKeyTuple struct {
	Currency0   common.Address
	Currency1   common.Address
	Fee         *big.Int
	TickSpacing *big.Int
	Hooks       common.Address
}

type quoteExactSingleParams struct {
	PoolKey     poolKeyTuple
	ZeroForOne  bool
	ExactAmount *big.Int
	HookData    []byte
}

func toPoolKeyTuple(key model.PoolKey) (poolKeyTuple, error) {
	for _, addr := range []string{key.Currency0, key.Currency1, key.Hooks} {
		if !common.IsHexAddress(addr) {
			return poolKeyTuple{}, fmt.Errorf("invalid pool key address: %q", addr)
		}
	}
	return poolKeyTuple{
		Currency0:   common.HexToAddress(key.Currency0),
		Currency1:   common.HexToAddress(key.Currency1),
		Fee:         new(big.Int).SetUint64(uint64(key.Fee)),
		TickSpacing: big.NewInt(int64(key.TickSpacing)),
		Hooks:       common.HexToAddress(key.Hooks),
	}, nil
}

// PoolID computes the UniV4 pool id: keccak256(abi.encode(poolKey)).
func PoolID(key model.PoolKey) (common.Hash, error) {
	tuple, err := toPoolKeyTuple(key)
	if err != nil {
		return common.Hash{}, err
	}
	addressTy, _ := abi.NewType("address", "", nil)
	uint24Ty, _ := abi.NewType("uint24", "", nil)
	int24Ty, _ := abi.NewType("int24", "", nil)
	args := abi.Arguments{{Type: addressTy}, {Type: addressTy}, {Type: uint24Ty}, {Type: int24Ty}, {Type: addressTy}}
	encoded, err := args.Pack(tuple.Currency0, tuple.Currency1, tuple.Fee, tuple.TickSpacing, tuple.Hooks)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode pool key: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

// Quote is the result of a quoter call.
type Quote struct {
	AmountOut   *big.Int
	GasEstimate *big.Int
}

// Quoter reads UniV4 exact-input quotes through eth_call.
type Quoter struct {
	caller  ContractCaller
	address common.Address
}

func NewQuoter(caller ContractCaller, address common.Address) *Quoter {
	return &Quoter{caller: caller, address: address}
}

// QuoteExactInputSingle quotes swapping amountIn of tokenIn through the pool at block.
func (q *Quoter) QuoteExactInputSingle(ctx context.Context, key model.PoolKey, tokenIn string, amountIn *big.Int, block uint64) (Quote, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return Quote{}, fmt.Errorf("amount in must be positive")
	}
	var zeroForOne bool
	switch {
	case model.SameAddress(tokenIn, key.Currency0):
		zeroForOne = true
	case model.SameAddress(tokenIn, key.Currency1):
		zeroForOne = false
	default:
		return Quote{}, fmt.Errorf("token %s not in pool currencies", tokenIn)
	}
	amount := amountIn
	if amount.Cmp(maxUint128) > 0 {
		amount = maxUint128
	}

	tuple, err := toPoolKeyTuple(key)
	if err != nil {
		return Quote{}, err
	}
	quoterABI, err := V4QuoterABI()
	if err != nil {
		return Quote{}, fmt.Errorf("parse quoter abi: %w", err)
	}
	params := quoteExactSingleParams{
		PoolKey:     tuple,
		ZeroForOne:  zeroForOne,
		ExactAmount: amount,
		HookData:    []byte{},
	}
	values, err := callMethod(ctx, q.caller, q.address, quoterABI, "quoteExactInputSingle", BlockArg(block), params)
	if err != nil {
		return Quote{}, err
	}
	if len(values) != 2 {
		return Quote{}, fmt.Errorf("unexpected quote values: %d", len(values))
	}
	out, err := asBigInt(values[0])
	if err != nil {
		return Quote{}, fmt.Errorf("amountOut: %w", err)
	}
	gas, err := asBigInt(values[1])
	if err != nil {
		return Quote{}, fmt.Errorf("gasEstimate: %w", err)
	}
	return Quote{AmountOut: out, GasEstimate: gas}, nil
}

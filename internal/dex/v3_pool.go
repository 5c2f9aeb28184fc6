package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// V3PoolState is the slot0 price and token order of a UniV3 pool.
type V3PoolState struct {
	Pool         common.Address
	Token0       common.Address
	Token1       common.Address
	SqrtPriceX96 *big.Int
}

// V3Pool reads a UniV3 pool resolved from the factory.
type V3Pool struct {
	caller  ContractCaller
	address common.Address
	token0  common.Address
	token1  common.Address
}

// ResolveV3Pool looks the pool up through factory.getPool and reads its token order.
func ResolveV3Pool(ctx context.Context, caller ContractCaller, factory, tokenA, tokenB common.Address, fee uint32) (*V3Pool, error) {
	factoryABI, err := v3FactoryABI.get()
	if err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := callMethod(ctx, caller, factory, factoryABI, "getPool", nil, tokenA, tokenB, new(big.Int).SetUint64(uint64(fee)))
	if err != nil {
		return nil, err
	}
	pool, err := asAddress(values[0])
	if err != nil {
		return nil, fmt.Errorf("getPool: %w", err)
	}
	if pool == (common.Address{}) {
		return nil, fmt.Errorf("no v3 pool for %s/%s fee %d", tokenA.Hex(), tokenB.Hex(), fee)
	}

	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err = callMethod(ctx, caller, pool, poolABI, "token0", nil)
	if err != nil {
		return nil, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return nil, fmt.Errorf("token0: %w", err)
	}
	values, err = callMethod(ctx, caller, pool, poolABI, "token1", nil)
	if err != nil {
		return nil, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return nil, fmt.Errorf("token1: %w", err)
	}
	return &V3Pool{caller: caller, address: pool, token0: token0, token1: token1}, nil
}

// NewV3Pool wraps a pool whose token order is already known.
func NewV3Pool(caller ContractCaller, address, token0, token1 common.Address) *V3Pool {
	return &V3Pool{caller: caller, address: address, token0: token0, token1: token1}
}

// State reads slot0 at block.
func (p *V3Pool) State(ctx context.Context, block uint64) (V3PoolState, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return V3PoolState{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callMethod(ctx, p.caller, p.address, poolABI, "slot0", BlockArg(block))
	if err != nil {
		return V3PoolState{}, err
	}
	sqrtPrice, err := asBigInt(values[0])
	if err != nil {
		return V3PoolState{}, fmt.Errorf("sqrtPriceX96: %w", err)
	}
	return V3PoolState{Pool: p.address, Token0: p.token0, Token1: p.token1, SqrtPriceX96: sqrtPrice}, nil
}

package dex

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// TokenMetaCache caches token metadata by address.
type TokenMetaCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.TokenMeta
}

func NewTokenMetaCache() *TokenMetaCache {
	return &TokenMetaCache{data: make(map[common.Address]model.TokenMeta)}
}

func (c *TokenMetaCache) Get(address common.Address) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *TokenMetaCache) Set(address common.Address, meta model.TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// Fetch returns cached metadata or loads it from chain.
func (c *TokenMetaCache) Fetch(ctx context.Context, caller ContractCaller, token common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	if meta, ok := c.Get(token); ok {
		return meta, nil
	}
	meta, err := FetchTokenMeta(ctx, caller, token, logger)
	if err != nil {
		return meta, err
	}
	c.Set(token, meta)
	return meta, nil
}

// FetchTokenMeta loads token metadata via ERC20 calls. The zero address is native ETH.
func FetchTokenMeta(ctx context.Context, caller ContractCaller, token common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: token.Hex()}
	if token == (common.Address{}) {
		meta.Symbol = "ETH"
		meta.Name = "Ether"
		meta.Decimals = 18
		return meta, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stringABI, err := erc20StringABI.get()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20Bytes32ABI.get()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	call := func(method string, parsed abi.ABI) ([]interface{}, error) {
		return callMethod(ctx, caller, token, parsed, method, nil)
	}

	values, err := call("decimals", stringABI)
	if err != nil {
		return meta, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return meta, err
	}
	meta.Decimals = decimals

	if values, err := call("symbol", stringABI); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if values, err := call("symbol", bytes32ABI); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			meta.Symbol = symbol
		}
	} else {
		logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := call("name", stringABI); err == nil {
		if name, ok := values[0].(string); ok {
			meta.Name = name
		}
	} else if values, err := call("name", bytes32ABI); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			meta.Name = name
		}
	} else {
		logger.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	return meta, nil
}

// FetchPairMeta reads token0, token1 and reserves of a UniV2 pair at one block.
func FetchPairMeta(ctx context.Context, caller ContractCaller, pair common.Address, block uint64, tokens *TokenMetaCache, logger *zap.Logger) (model.PairMetadata, error) {
	pairABI, err := V2PairABI()
	if err != nil {
		return model.PairMetadata{}, fmt.Errorf("parse pair abi: %w", err)
	}
	if tokens == nil {
		tokens = NewTokenMetaCache()
	}
	blockArg := BlockArg(block)

	values, err := callMethod(ctx, caller, pair, pairABI, "token0", blockArg)
	if err != nil {
		return model.PairMetadata{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return model.PairMetadata{}, fmt.Errorf("token0: %w", err)
	}

	values, err = callMethod(ctx, caller, pair, pairABI, "token1", blockArg)
	if err != nil {
		return model.PairMetadata{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return model.PairMetadata{}, fmt.Errorf("token1: %w", err)
	}

	values, err = callMethod(ctx, caller, pair, pairABI, "getReserves", blockArg)
	if err != nil {
		return model.PairMetadata{}, err
	}
	if len(values) != 3 {
		return model.PairMetadata{}, fmt.Errorf("unexpected getReserves values: %d", len(values))
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return model.PairMetadata{}, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return model.PairMetadata{}, fmt.Errorf("reserve1: %w", err)
	}
	tsLast, err := asBigInt(values[2])
	if err != nil {
		return model.PairMetadata{}, fmt.Errorf("blockTimestampLast: %w", err)
	}

	meta0, err := tokens.Fetch(ctx, caller, token0, logger)
	if err != nil {
		return model.PairMetadata{}, fmt.Errorf("token0 metadata: %w", err)
	}
	meta1, err := tokens.Fetch(ctx, caller, token1, logger)
	if err != nil {
		return model.PairMetadata{}, fmt.Errorf("token1 metadata: %w", err)
	}

	return model.PairMetadata{
		BlockNumber:        block,
		Pair:               pair.Hex(),
		Token0:             model.PairToken{TokenMeta: meta0, ReserveRaw: reserve0.String()},
		Token1:             model.PairToken{TokenMeta: meta1, ReserveRaw: reserve1.String()},
		BlockTimestampLast: uint32(tsLast.Uint64()),
	}, nil
}

// FormatTokenAmount renders a raw integer amount with the token's decimals.
func FormatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat := new(big.Rat).SetFrac(abs, denom)
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}

// ScaleAmount converts a raw integer amount to float units.
func ScaleAmount(value *big.Int, decimals uint8) float64 {
	if value == nil {
		return 0
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	f, _ := new(big.Rat).SetFrac(value, denom).Float64()
	return f
}

package dex

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const v2PairABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint112", "name": "reserve0", "type": "uint112"},
      {"indexed": false, "internalType": "uint112", "name": "reserve1", "type": "uint112"}
    ],
    "name": "Sync",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "sender", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount0", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount1", "type": "uint256"}
    ],
    "name": "Mint",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "sender", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount0", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount1", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"}
    ],
    "name": "Burn",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "sender", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount0In", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount1In", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount0Out", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount1Out", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"}
    ],
    "name": "Swap",
    "type": "event"
  },
  {"inputs": [], "name": "token0", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token1", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [],
    "name": "getReserves",
    "outputs": [
      {"internalType": "uint112", "name": "reserve0", "type": "uint112"},
      {"internalType": "uint112", "name": "reserve1", "type": "uint112"},
      {"internalType": "uint32", "name": "blockTimestampLast", "type": "uint32"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const v4PoolManagerABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "PoolId", "name": "id", "type": "bytes32"},
      {"indexed": true, "internalType": "Currency", "name": "currency0", "type": "address"},
      {"indexed": true, "internalType": "Currency", "name": "currency1", "type": "address"},
      {"indexed": false, "internalType": "uint24", "name": "fee", "type": "uint24"},
      {"indexed": false, "internalType": "int24", "name": "tickSpacing", "type": "int24"},
      {"indexed": false, "internalType": "contract IHooks", "name": "hooks", "type": "address"},
      {"indexed": false, "internalType": "uint160", "name": "sqrtPriceX96", "type": "uint160"},
      {"indexed": false, "internalType": "int24", "name": "tick", "type": "int24"}
    ],
    "name": "Initialize",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "PoolId", "name": "id", "type": "bytes32"},
      {"indexed": true, "internalType": "address", "name": "sender", "type": "address"},
      {"indexed": false, "internalType": "int24", "name": "tickLower", "type": "int24"},
      {"indexed": false, "internalType": "int24", "name": "tickUpper", "type": "int24"},
      {"indexed": false, "internalType": "int256", "name": "liquidityDelta", "type": "int256"},
      {"indexed": false, "internalType": "bytes32", "name": "salt", "type": "bytes32"}
    ],
    "name": "ModifyLiquidity",
    "type": "event"
  }
]`

const v4QuoterABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {
            "components": [
              {"internalType": "Currency", "name": "currency0", "type": "address"},
              {"internalType": "Currency", "name": "currency1", "type": "address"},
              {"internalType": "uint24", "name": "fee", "type": "uint24"},
              {"internalType": "int24", "name": "tickSpacing", "type": "int24"},
              {"internalType": "contract IHooks", "name": "hooks", "type": "address"}
            ],
            "internalType": "struct PoolKey",
            "name": "poolKey",
            "type": "tuple"
          },
          {"internalType": "bool", "name": "zeroForOne", "type": "bool"},
          {"internalType": "uint128", "name": "exactAmount", "type": "uint128"},
          {"internalType": "bytes", "name": "hookData", "type": "bytes"}
        ],
        "internalType": "struct IV4Quoter.QuoteExactSingleParams",
        "name": "params",
        "type": "tuple"
      }
    ],
    "name": "quoteExactInputSingle",
    "outputs": [
      {"internalType": "uint256", "name": "amountOut", "type": "uint256"},
      {"internalType": "uint256", "name": "gasEstimate", "type": "uint256"}
    ],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

const v3PoolABIJSON = `[
  {"inputs": [], "name": "token0", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token1", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [],
    "name": "slot0",
    "outputs": [
      {"internalType": "uint160", "name": "sqrtPriceX96", "type": "uint160"},
      {"internalType": "int24", "name": "tick", "type": "int24"},
      {"internalType": "uint16", "name": "observationIndex", "type": "uint16"},
      {"internalType": "uint16", "name": "observationCardinality", "type": "uint16"},
      {"internalType": "uint16", "name": "observationCardinalityNext", "type": "uint16"},
      {"internalType": "uint8", "name": "feeProtocol", "type": "uint8"},
      {"internalType": "bool", "name": "unlocked", "type": "bool"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const v3FactoryABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "tokenA", "type": "address"},
      {"internalType": "address", "name": "tokenB", "type": "address"},
      {"internalType": "uint24", "name": "fee", "type": "uint24"}
    ],
    "name": "getPool",
    "outputs": [{"internalType": "address", "name": "pool", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const arrakisVaultABIJSON = `[
  {"inputs": [], "name": "module", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "activeModule", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getModule", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "strategy", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "owner", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [],
    "name": "totalUnderlying",
    "outputs": [
      {"internalType": "uint256", "name": "amount0", "type": "uint256"},
      {"internalType": "uint256", "name": "amount1", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const arrakisModuleABIJSON = `[
  {
    "inputs": [],
    "name": "poolKey",
    "outputs": [
      {"internalType": "Currency", "name": "currency0", "type": "address"},
      {"internalType": "Currency", "name": "currency1", "type": "address"},
      {"internalType": "uint24", "name": "fee", "type": "uint24"},
      {"internalType": "int24", "name": "tickSpacing", "type": "int24"},
      {"internalType": "contract IHooks", "name": "hooks", "type": "address"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {"inputs": [], "name": "poolManager", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [],
    "name": "getRanges",
    "outputs": [
      {
        "components": [
          {"internalType": "int24", "name": "tickLower", "type": "int24"},
          {"internalType": "int24", "name": "tickUpper", "type": "int24"}
        ],
        "internalType": "struct Range[]",
        "name": "ranges",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const erc20ABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

const erc20ABIBytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

// lazyABI parses an ABI definition once on first use.
type lazyABI struct {
	json string
	once sync.Once
	abi  abi.ABI
	err  error
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.abi, l.err = abi.JSON(strings.NewReader(l.json))
	})
	return l.abi, l.err
}

var (
	v2PairABI        = &lazyABI{json: v2PairABIJSON}
	v4PoolManagerABI = &lazyABI{json: v4PoolManagerABIJSON}
	v4QuoterABI      = &lazyABI{json: v4QuoterABIJSON}
	v3PoolABI        = &lazyABI{json: v3PoolABIJSON}
	v3FactoryABI     = &lazyABI{json: v3FactoryABIJSON}
	arrakisVaultABI  = &lazyABI{json: arrakisVaultABIJSON}
	arrakisModuleABI = &lazyABI{json: arrakisModuleABIJSON}
	erc20StringABI   = &lazyABI{json: erc20ABIStringJSON}
	erc20Bytes32ABI  = &lazyABI{json: erc20ABIBytes32JSON}
)

// V2PairABI returns the parsed UniV2 pair ABI.
func V2PairABI() (abi.ABI, error) { return v2PairABI.get() }

// V4PoolManagerABI returns the parsed UniV4 PoolManager event ABI.
func V4PoolManagerABI() (abi.ABI, error) { return v4PoolManagerABI.get() }

// V4QuoterABI returns the parsed UniV4 quoter ABI.
func V4QuoterABI() (abi.ABI, error) { return v4QuoterABI.get() }

// V3PoolABI returns the parsed UniV3 pool ABI.
func V3PoolABI() (abi.ABI, error) { return v3PoolABI.get() }

// ArrakisModuleABI returns the parsed Arrakis UniV4 module ABI.
func ArrakisModuleABI() (abi.ABI, error) { return arrakisModuleABI.get() }

package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Options tunes request pacing and retries. Zero values fall back to defaults.
type Options struct {
	RequestInterval time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	Logger          *zap.Logger
}

// Client wraps go-ethereum RPC. Every call is paced; transient failures are retried a bounded
// number of times while reverts and rejected queries return at once.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	pacer     *Pacer
	opts      Options
	logger    *zap.Logger

	mu      sync.RWMutex
	tsCache map[uint64]uint64
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string, opts Options) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		pacer:     NewPacer(opts.RequestInterval),
		opts:      opts,
		logger:    logger,
		tsCache:   make(map[uint64]uint64),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

func (c *Client) do(ctx context.Context, method string, fn func(context.Context) error) error {
	return withRetry(ctx, c.opts.MaxRetries, c.opts.RetryBackoff, func(ctx context.Context) error {
		if err := c.pacer.Wait(ctx); err != nil {
			return err
		}
		err := fn(ctx)
		if err != nil {
			decision := Classify(err)
			c.logger.Debug("rpc call failed",
				zap.String("method", method),
				zap.String("class", string(decision.Class)),
				zap.String("reason", decision.Reason),
				zap.Error(err),
			)
		}
		return err
	})
}

// ChainID returns the chain ID.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var id *big.Int
	err := c.do(ctx, "eth_chainId", func(ctx context.Context) error {
		var err error
		id, err = c.ethClient.ChainID(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	if !id.IsUint64() {
		return 0, fmt.Errorf("chain id does not fit in uint64: %s", id)
	}
	return id.Uint64(), nil
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	var number uint64
	err := c.do(ctx, "eth_blockNumber", func(ctx context.Context) error {
		var err error
		number, err = c.ethClient.BlockNumber(ctx)
		return err
	})
	return number, err
}

// HeaderByNumber returns the block header by number.
func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	var header *types.Header
	err := c.do(ctx, "eth_getBlockByNumber", func(ctx context.Context) error {
		var err error
		header, err = c.ethClient.HeaderByNumber(ctx, number)
		return err
	})
	return header, err
}

// BlockTimestamp returns the block timestamp, using an in-memory cache.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	c.mu.RLock()
	ts, ok := c.tsCache[number]
	c.mu.RUnlock()
	if ok {
		return ts, nil
	}

	header, err := c.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, err
	}

	ts = header.Time
	c.mu.Lock()
	c.tsCache[number] = ts
	c.mu.Unlock()

	return ts, nil
}

// FilterLogs runs eth_getLogs for the query.
func (c *Client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	err := c.do(ctx, "eth_getLogs", func(ctx context.Context) error {
		var err error
		logs, err = c.ethClient.FilterLogs(ctx, query)
		return err
	})
	return logs, err
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := c.do(ctx, "eth_call", func(ctx context.Context) error {
		var err error
		out, err = c.ethClient.CallContract(ctx, msg, blockNumber)
		return err
	})
	return out, err
}

// CodeAt returns the contract bytecode at the address, nil block meaning latest.
func (c *Client) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	var code []byte
	err := c.do(ctx, "eth_getCode", func(ctx context.Context) error {
		var err error
		code, err = c.ethClient.CodeAt(ctx, account, blockNumber)
		return err
	})
	return code, err
}

package chain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kuber-code/Arrakis-Assessment/internal/scan"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcNode answers single JSON-RPC requests; handle returns either a result or an error.
type rpcNode struct {
	requests atomic.Int64
	handle   func(req rpcRequest) (any, *rpcError, int)
}

func (n *rpcNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.requests.Add(1)
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, rpcErr, status := n.handle(req)
	if status != 0 && status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)
		return
	}
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestClient(t *testing.T, node *rpcNode) *Client {
	t.Helper()
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), srv.URL, Options{
		MaxRetries:   5,
		RetryBackoff: time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestCallContractRevertIsNotRetried(t *testing.T) {
	node := &rpcNode{handle: func(rpcRequest) (any, *rpcError, int) {
		return nil, &rpcError{Code: 3, Message: "execution reverted"}, 0
	}}
	client := newTestClient(t, node)

	to := common.HexToAddress("0x1")
	_, err := client.CallContract(context.Background(), ethereum.CallMsg{To: &to}, nil)
	require.Error(t, err)

	var rpcErr rpc.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, 3, rpcErr.ErrorCode())
	assert.EqualValues(t, 1, node.requests.Load())
}

func TestTransientFailuresAreRetried(t *testing.T) {
	var calls atomic.Int64
	node := &rpcNode{handle: func(rpcRequest) (any, *rpcError, int) {
		if calls.Add(1) < 3 {
			return nil, nil, http.StatusServiceUnavailable
		}
		return "0x10", nil, 0
	}}
	client := newTestClient(t, node)

	number, err := client.LatestBlockNumber(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 16, number)
	assert.EqualValues(t, 3, node.requests.Load())
}

func TestRejectedRangeSplitsWithoutRetrying(t *testing.T) {
	const maxSpan = 500
	var rejected atomic.Int64
	node := &rpcNode{handle: func(req rpcRequest) (any, *rpcError, int) {
		var filter struct {
			FromBlock string `json:"fromBlock"`
			ToBlock   string `json:"toBlock"`
		}
		if len(req.Params) == 0 || json.Unmarshal(req.Params[0], &filter) != nil {
			return nil, &rpcError{Code: -32602, Message: "invalid params"}, 0
		}
		from, errFrom := hexutil.DecodeUint64(filter.FromBlock)
		to, errTo := hexutil.DecodeUint64(filter.ToBlock)
		if errFrom != nil || errTo != nil {
			return nil, &rpcError{Code: -32602, Message: "invalid params"}, 0
		}
		if to-from+1 > maxSpan {
			rejected.Add(1)
			return nil, &rpcError{Code: -32005, Message: "query exceeds max block range 500"}, 0
		}
		return []any{}, nil, 0
	}}
	client := newTestClient(t, node)

	fetcher := scan.NewFetcher(client, scan.FetchConfig{BatchSize: 2000, MinSplit: 1}, nil)
	logs, err := fetcher.Fetch(context.Background(), 1, 2000, scan.Filter{})
	require.NoError(t, err)
	assert.Empty(t, logs)

	// 1-2000, 1-1000 and 1001-2000 are rejected once each; the four 500-block halves succeed.
	assert.EqualValues(t, 3, rejected.Load())
	assert.EqualValues(t, 7, node.requests.Load())
}

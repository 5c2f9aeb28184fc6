package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rangeLimitedSource rejects queries wider than maxSpan and serves logs from a fixed set.
type rangeLimitedSource struct {
	maxSpan uint64
	logs    []types.Log
	calls   int
}

func (s *rangeLimitedSource) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	s.calls++
	from, to := q.FromBlock.Uint64(), q.ToBlock.Uint64()
	if to-from+1 > s.maxSpan {
		return nil, errors.New("query returned more than 10000 results")
	}
	out := make([]types.Log, 0)
	for _, log := range s.logs {
		if log.BlockNumber >= from && log.BlockNumber <= to {
			out = append(out, log)
		}
	}
	return out, nil
}

func TestFetchSplitsRejectedBatches(t *testing.T) {
	src := &rangeLimitedSource{
		maxSpan: 25,
		logs: []types.Log{
			{BlockNumber: 140, Index: 2, TxHash: common.HexToHash("0x02")},
			{BlockNumber: 101, Index: 0, TxHash: common.HexToHash("0x01")},
			{BlockNumber: 140, Index: 1, TxHash: common.HexToHash("0x03")},
			{BlockNumber: 199, Index: 0, TxHash: common.HexToHash("0x04"), Removed: true},
		},
	}
	fetcher := NewFetcher(src, FetchConfig{BatchSize: 100, MinSplit: 10}, nil)

	logs, err := fetcher.Fetch(context.Background(), 100, 199, Filter{})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, uint64(101), logs[0].BlockNumber)
	assert.Equal(t, uint(1), logs[1].Index)
	assert.Equal(t, uint(2), logs[2].Index)
	assert.Greater(t, src.calls, 1)
}

func TestFetchFailsBelowMinSplit(t *testing.T) {
	src := &rangeLimitedSource{maxSpan: 5}
	fetcher := NewFetcher(src, FetchConfig{BatchSize: 100, MinSplit: 20}, nil)

	_, err := fetcher.Fetch(context.Background(), 0, 99, Filter{})
	require.Error(t, err)
}

func TestFetchDeduplicatesOverlappingResults(t *testing.T) {
	dup := types.Log{BlockNumber: 10, Index: 4, TxHash: common.HexToHash("0xaa")}
	src := &rangeLimitedSource{maxSpan: 1000, logs: []types.Log{dup, dup}}
	fetcher := NewFetcher(src, FetchConfig{BatchSize: 50}, nil)

	logs, err := fetcher.Fetch(context.Background(), 0, 99, Filter{})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// NewV2PairDecoder builds a decoder for UniV2 pair Sync, Mint, Burn and Swap events.
func NewV2PairDecoder() (*EventDecoder, error) {
	parsed, err := V2PairABI()
	if err != nil {
		return nil, err
	}
	return newEventDecoder(parsed, map[string]decodeFunc{
		"Sync": decodeV2Sync,
		"Mint": decodeV2Mint,
		"Burn": decodeV2Burn,
		"Swap": decodeV2Swap,
	})
}

func decodeV2Sync(event abi.Event, log types.Log) (interface{}, error) {
	values, err := unpackNonIndexed(event, log.Data, 2)
	if err != nil {
		return nil, err
	}
	amounts, err := bigStrings(values)
	if err != nil {
		return nil, err
	}
	return model.SyncEventData{Reserve0: amounts[0], Reserve1: amounts[1]}, nil
}

func decodeV2Mint(event abi.Event, log types.Log) (interface{}, error) {
	var indexed struct {
		Sender common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	values, err := unpackNonIndexed(event, log.Data, 2)
	if err != nil {
		return nil, err
	}
	amounts, err := bigStrings(values)
	if err != nil {
		return nil, err
	}
	return model.MintEventData{
		Sender:  indexed.Sender.Hex(),
		Amount0: amounts[0],
		Amount1: amounts[1],
	}, nil
}

func decodeV2Burn(event abi.Event, log types.Log) (interface{}, error) {
	var indexed struct {
		Sender common.Address
		To     common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	values, err := unpackNonIndexed(event, log.Data, 2)
	if err != nil {
		return nil, err
	}
	amounts, err := bigStrings(values)
	if err != nil {
		return nil, err
	}
	return model.BurnEventData{
		Sender:  indexed.Sender.Hex(),
		To:      indexed.To.Hex(),
		Amount0: amounts[0],
		Amount1: amounts[1],
	}, nil
}

func decodeV2Swap(event abi.Event, log types.Log) (interface{}, error) {
	var indexed struct {
		Sender common.Address
		To     common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	values, err := unpackNonIndexed(event, log.Data, 4)
	if err != nil {
		return nil, err
	}
	amounts, err := bigStrings(values)
	if err != nil {
		return nil, err
	}
	return model.SwapEventData{
		Sender:     indexed.Sender.Hex(),
		To:         indexed.To.Hex(),
		Amount0In:  amounts[0],
		Amount1In:  amounts[1],
		Amount0Out: amounts[2],
		Amount1Out: amounts[3],
	}, nil
}

package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// NewV4PoolManagerDecoder builds a decoder for PoolManager Initialize and ModifyLiquidity events.
func NewV4PoolManagerDecoder() (*EventDecoder, error) {
	parsed, err := V4PoolManagerABI()
	if err != nil {
		return nil, err
	}
	return newEventDecoder(parsed, map[string]decodeFunc{
		"Initialize":      decodeV4Initialize,
		"ModifyLiquidity": decodeV4ModifyLiquidity,
	})
}

func decodeV4Initialize(event abi.Event, log types.Log) (interface{}, error) {
	var indexed struct {
		Id        [32]byte
		Currency0 common.Address
		Currency1 common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	values, err := unpackNonIndexed(event, log.Data, 5)
	if err != nil {
		return nil, err
	}

	feeInt, err := asBigInt(values[0])
	if err != nil {
		return nil, err
	}
	fee, err := uint24FromBig(feeInt)
	if err != nil {
		return nil, err
	}
	spacingInt, err := asBigInt(values[1])
	if err != nil {
		return nil, err
	}
	spacing, err := int24FromBig(spacingInt)
	if err != nil {
		return nil, err
	}
	hooks, err := asAddress(values[2])
	if err != nil {
		return nil, err
	}
	sqrtPrice, err := asBigInt(values[3])
	if err != nil {
		return nil, err
	}
	tickInt, err := asBigInt(values[4])
	if err != nil {
		return nil, err
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return nil, err
	}

	return model.InitializeEventData{
		PoolID:       common.Hash(indexed.Id).Hex(),
		Currency0:    indexed.Currency0.Hex(),
		Currency1:    indexed.Currency1.Hex(),
		Fee:          fee,
		TickSpacing:  spacing,
		Hooks:        hooks.Hex(),
		SqrtPriceX96: sqrtPrice.String(),
		Tick:         tick,
	}, nil
}

func decodeV4ModifyLiquidity(event abi.Event, log types.Log) (interface{}, error) {
	var indexed struct {
		Id     [32]byte
		Sender common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	values, err := unpackNonIndexed(event, log.Data, 4)
	if err != nil {
		return nil, err
	}

	lowerInt, err := asBigInt(values[0])
	if err != nil {
		return nil, err
	}
	tickLower, err := int24FromBig(lowerInt)
	if err != nil {
		return nil, err
	}
	upperInt, err := asBigInt(values[1])
	if err != nil {
		return nil, err
	}
	tickUpper, err := int24FromBig(upperInt)
	if err != nil {
		return nil, err
	}
	delta, err := asBigInt(values[2])
	if err != nil {
		return nil, err
	}
	salt, ok := values[3].([32]byte)
	if !ok {
		return nil, fmt.Errorf("unsupported salt type %T", values[3])
	}

	return model.ModifyLiquidityEventData{
		PoolID:         common.Hash(indexed.Id).Hex(),
		Sender:         indexed.Sender.Hex(),
		TickLower:      tickLower,
		TickUpper:      tickUpper,
		LiquidityDelta: delta.String(),
		Salt:           hexutil.Encode(salt[:]),
	}, nil
}

package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

type decodeFunc func(event abi.Event, log types.Log) (interface{}, error)

// EventDecoder decodes the events of one contract ABI into typed payloads.
type EventDecoder struct {
	parsed      abi.ABI
	topicToName map[common.Hash]string
	decoders    map[string]decodeFunc
}

func newEventDecoder(parsed abi.ABI, decoders map[string]decodeFunc) (*EventDecoder, error) {
	topicToName := make(map[common.Hash]string, len(decoders))
	for name := range decoders {
		event, ok := parsed.Events[name]
		if !ok {
			return nil, fmt.Errorf("event %s missing from abi", name)
		}
		topicToName[event.ID] = name
	}
	return &EventDecoder{parsed: parsed, topicToName: topicToName, decoders: decoders}, nil
}

// Topic returns topic0 for the event name, or the zero hash when unknown.
func (d *EventDecoder) Topic(name string) common.Hash {
	event, ok := d.parsed.Events[name]
	if !ok {
		return common.Hash{}
	}
	return event.ID
}

// Topics returns topic0 for each of the given event names.
func (d *EventDecoder) Topics(names ...string) []common.Hash {
	out := make([]common.Hash, 0, len(names))
	for _, name := range names {
		if topic := d.Topic(name); topic != (common.Hash{}) {
			out = append(out, topic)
		}
	}
	return out
}

// CanDecode checks if the topic0 is supported.
func (d *EventDecoder) CanDecode(topic0 common.Hash) bool {
	_, ok := d.topicToName[topic0]
	return ok
}

// Decode converts a raw log into a TypedEvent.
func (d *EventDecoder) Decode(log types.Log) (*model.TypedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	name, ok := d.topicToName[log.Topics[0]]
	if !ok {
		return nil, fmt.Errorf("unsupported topic0: %s", log.Topics[0].Hex())
	}
	event := d.parsed.Events[name]
	if got, want := len(log.Topics)-1, len(indexedArguments(event.Inputs)); got != want {
		return nil, fmt.Errorf("%s: expected %d indexed topics, got %d", name, want, got)
	}
	decoded, err := d.decoders[name](event, log)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return &model.TypedEvent{
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		EventName:   name,
		Decoded:     decoded,
	}, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, data []byte, want int) ([]interface{}, error) {
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	if len(values) != want {
		return nil, fmt.Errorf("unexpected %s values: %d", event.Name, len(values))
	}
	return values, nil
}

func bigStrings(values []interface{}) ([]string, error) {
	out := make([]string, len(values))
	for i, value := range values {
		v, err := asBigInt(value)
		if err != nil {
			return nil, err
		}
		out[i] = v.String()
	}
	return out, nil
}

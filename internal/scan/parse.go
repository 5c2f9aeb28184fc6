package scan

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseAddress converts a configured hex address; name labels the error.
func ParseAddress(name, input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Address{}, fmt.Errorf("%s address is required", name)
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid %s address: %s", name, input)
	}
	return common.HexToAddress(input), nil
}

// ParseHash converts a 32-byte hex string such as a pool id or topic.
func ParseHash(name, input string) (common.Hash, error) {
	input = strings.TrimSpace(input)
	data, err := hexutil.Decode(input)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid %s: %s", name, input)
	}
	if len(data) != 32 {
		return common.Hash{}, fmt.Errorf("invalid %s length: %s", name, input)
	}
	return common.BytesToHash(data), nil
}

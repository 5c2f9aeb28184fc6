package model

import (
	"fmt"
	"strings"
)

// PairToken is one side of a UniV2 pair with its reserve at the metadata block.
type PairToken struct {
	TokenMeta
	ReserveRaw string `json:"reserve_raw"`
}

// PairMetadata is the UniV2 pair snapshot written by the metadata stage.
type PairMetadata struct {
	ChainID            uint64    `json:"chain_id"`
	BlockNumber        uint64    `json:"block_number"`
	Pair               string    `json:"pair"`
	Token0             PairToken `json:"token0"`
	Token1             PairToken `json:"token1"`
	BlockTimestampLast uint32    `json:"block_timestamp_last"`
}

// Split returns the base token and the quote token, where quote is the given WETH address.
// baseIsToken0 reports whether the base token is token0 of the pair.
func (m PairMetadata) Split(weth string) (base, quote PairToken, baseIsToken0 bool, err error) {
	switch {
	case SameAddress(m.Token1.Address, weth):
		return m.Token0, m.Token1, true, nil
	case SameAddress(m.Token0.Address, weth):
		return m.Token1, m.Token0, false, nil
	default:
		return PairToken{}, PairToken{}, false, fmt.Errorf("pair %s does not contain weth %s", m.Pair, weth)
	}
}

// PoolKey identifies a UniV4 pool.
type PoolKey struct {
	Currency0   string `json:"currency0"`
	Currency1   string `json:"currency1"`
	Fee         uint32 `json:"fee_uint24"`
	TickSpacing int32  `json:"tick_spacing"`
	Hooks       string `json:"hooks"`
}

// FeeRate converts the uint24 fee (hundredths of a bip) to a fraction.
func (k PoolKey) FeeRate() float64 {
	return float64(k.Fee) / 1_000_000
}

// Contains reports whether the currency is one of the pool's two currencies.
func (k PoolKey) Contains(currency string) bool {
	return SameAddress(k.Currency0, currency) || SameAddress(k.Currency1, currency)
}

// Other returns the counterpart of currency in the pool.
func (k PoolKey) Other(currency string) (string, error) {
	switch {
	case SameAddress(k.Currency0, currency):
		return k.Currency1, nil
	case SameAddress(k.Currency1, currency):
		return k.Currency0, nil
	default:
		return "", fmt.Errorf("currency %s not in pool key", currency)
	}
}

func (k PoolKey) String() string {
	return strings.Join([]string{k.Currency0, k.Currency1, fmt.Sprint(k.Fee), fmt.Sprint(k.TickSpacing), k.Hooks}, "/")
}

package model

import "strings"

// NativeCurrency is the zero address UniV4 uses for ETH.
const NativeCurrency = "0x0000000000000000000000000000000000000000"

// TokenMeta captures ERC20 metadata. Native ETH is reported as symbol ETH with 18 decimals.
type TokenMeta struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Name     string `json:"name,omitempty"`
}

// IsNative reports whether the token is the native currency.
func (t TokenMeta) IsNative() bool {
	return strings.EqualFold(t.Address, NativeCurrency)
}

// SameAddress compares two hex addresses ignoring checksum case.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// ProbeSpec is a zero-argument selector and how to render its return data.
type ProbeSpec struct {
	Signature string
	Kind      string // "address", "uint256" or "raw"
}

// DefaultVaultProbes lists the getters tried against an unknown vault.
var DefaultVaultProbes = []ProbeSpec{
	{"name()", "raw"},
	{"symbol()", "raw"},
	{"decimals()", "uint256"},
	{"totalSupply()", "uint256"},
	{"owner()", "address"},
	{"asset()", "address"},
	{"totalAssets()", "uint256"},
	{"module()", "address"},
	{"activeModule()", "address"},
	{"getModule()", "address"},
	{"strategy()", "address"},
	{"poolKey()", "raw"},
	{"poolManager()", "address"},
	{"totalUnderlying()", "raw"},
	{"getRanges()", "raw"},
}

// Probe calls each selector on target and records the outcome. Reverts are results, not errors.
func Probe(ctx context.Context, caller ContractCaller, target common.Address, block uint64, specs []ProbeSpec) []model.ProbeResult {
	out := make([]model.ProbeResult, 0, len(specs))
	for _, spec := range specs {
		res := model.ProbeResult{Signature: spec.Signature, Kind: spec.Kind}
		selector := crypto.Keccak256([]byte(spec.Signature))[:4]
		ret, err := caller.CallContract(ctx, ethereum.CallMsg{To: &target, Data: selector}, BlockArg(block))
		switch {
		case err != nil:
			res.Status = "revert"
			res.Error = err.Error()
		case len(ret) == 0:
			res.Status = "empty"
		default:
			res.Status = "ok"
			res.Value = renderProbe(spec.Kind, ret)
		}
		out = append(out, res)
	}
	return out
}

func renderProbe(kind string, ret []byte) string {
	switch kind {
	case "address":
		if len(ret) >= 32 {
			return common.BytesToAddress(ret[12:32]).Hex()
		}
	case "uint256":
		if len(ret) >= 32 {
			return new(big.Int).SetBytes(ret[:32]).String()
		}
	}
	prefix := ret
	if len(prefix) > 64 {
		prefix = prefix[:64]
	}
	return fmt.Sprintf("len=%d %s", len(ret), hexutil.Encode(prefix))
}

package vault

import (
	"math"
	"math/big"

	"github.com/Kuber-code/Arrakis-Assessment/internal/dex"
	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// tieTolerance is the log-distance gap below which both assignments fit the spot equally.
const tieTolerance = 1e-9

// Decomposition is one assignment of the vault's two underlying amounts to base and ETH.
type Decomposition struct {
	Mode      string
	AmtBase   float64
	AmtETH    float64
	Ambiguous bool
}

// Ratio is base per ETH implied by the amounts.
func (d Decomposition) Ratio() float64 {
	if !positive(d.AmtBase) || !positive(d.AmtETH) {
		return math.NaN()
	}
	return d.AmtBase / d.AmtETH
}

// BaseFirst reports whether the first underlying amount was taken as the base token.
func (d Decomposition) BaseFirst() bool {
	return baseFirst(d.Mode)
}

func baseFirst(mode string) bool {
	return mode != model.MappingETH0Base1
}

// Decompose assigns (u0, u1) to base and ETH by matching ln(base/eth) against ln(spot), where
// spot is base per ETH. When the fit is ambiguous or undefined, the assignment closest to
// prevRatio wins; without a usable prevRatio the first amount is assumed to be the base token.
func Decompose(u0, u1 *big.Int, base, eth model.TokenMeta, spotBasePerETH, prevRatio float64) Decomposition {
	first := Decomposition{
		Mode:    model.MappingBase0ETH1,
		AmtBase: dex.ScaleAmount(u0, base.Decimals),
		AmtETH:  dex.ScaleAmount(u1, eth.Decimals),
	}
	second := Decomposition{
		Mode:    model.MappingETH0Base1,
		AmtBase: dex.ScaleAmount(u1, base.Decimals),
		AmtETH:  dex.ScaleAmount(u0, eth.Decimals),
	}

	d0 := logDistance(first.Ratio(), spotBasePerETH)
	d1 := logDistance(second.Ratio(), spotBasePerETH)
	if !math.IsInf(d0, 1) || !math.IsInf(d1, 1) {
		if math.Abs(d0-d1) > tieTolerance {
			if d0 < d1 {
				return first
			}
			return second
		}
	}

	h0 := logDistance(first.Ratio(), prevRatio)
	h1 := logDistance(second.Ratio(), prevRatio)
	if (!math.IsInf(h0, 1) || !math.IsInf(h1, 1)) && math.Abs(h0-h1) > tieTolerance {
		pick := first
		if h1 < h0 {
			pick = second
		}
		pick.Ambiguous = true
		return pick
	}

	first.Mode = model.MappingAssumeBase0
	first.Ambiguous = true
	return first
}

// logDistance is |ln a - ln b|, or +Inf when either side is not a positive finite number.
func logDistance(a, b float64) float64 {
	if !positive(a) || !positive(b) {
		return math.Inf(1)
	}
	return math.Abs(math.Log(a) - math.Log(b))
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

package vault

import (
	"fmt"
	"math"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// ApplyBaselines fills the hold and full-range baselines and the three value indices, all
// anchored at the first sample. The full-range baseline is a fee-less constant product seeded
// with the first sample's amounts. A non-positive inception value is an error; baselines that
// cannot be anchored are left NaN.
func ApplyBaselines(samples []model.VaultSample) error {
	if len(samples) == 0 {
		return fmt.Errorf("no vault samples")
	}
	first := samples[0]
	v0 := first.ValueTotalUSD
	if !positive(v0) {
		return fmt.Errorf("vault value at block %d is %v, cannot index", first.BlockNumber, v0)
	}

	eth0, base0 := first.AmtETH, first.AmtBase
	fullRange := positive(eth0) && positive(base0) && positive(first.SpotETHPerBase)
	k := eth0 * base0

	for i := range samples {
		s := &samples[i]
		s.HoldValueUSD = eth0*s.EthUSD + base0*s.BaseUSD
		s.FullRangeAmtETH, s.FullRangeAmtBase, s.FullRangeValueUSD = math.NaN(), math.NaN(), math.NaN()
		if fullRange && positive(s.SpotETHPerBase) {
			p := s.SpotETHPerBase
			s.FullRangeAmtBase = math.Sqrt(k / p)
			s.FullRangeAmtETH = math.Sqrt(k * p)
			s.FullRangeValueUSD = s.FullRangeAmtETH*s.EthUSD + s.FullRangeAmtBase*s.BaseUSD
		}
	}

	h0 := samples[0].HoldValueUSD
	fr0 := samples[0].FullRangeValueUSD
	for i := range samples {
		s := &samples[i]
		s.VaultIndex = s.ValueTotalUSD / v0
		s.HoldIndex = index(s.HoldValueUSD, h0)
		s.FullRangeIndex = index(s.FullRangeValueUSD, fr0)
	}
	return nil
}

func index(value, base float64) float64 {
	if !positive(base) || math.IsNaN(value) {
		return math.NaN()
	}
	return value / base
}

// Summarize compares the first and last samples. The mapping mode is the orientation most
// samples share, assumed and measured base-first samples counting together; ties go to
// base-first. A base-first series reports the measured mode unless every sample was assumed.
func Summarize(samples []model.VaultSample) (model.VaultSummary, error) {
	if len(samples) == 0 {
		return model.VaultSummary{}, fmt.Errorf("no vault samples")
	}
	first, last := samples[0], samples[len(samples)-1]

	var measured, assumed, ethFirst, flips int
	for _, s := range samples {
		switch {
		case s.MappingMode == "":
		case !baseFirst(s.MappingMode):
			ethFirst++
		case s.MappingMode == model.MappingAssumeBase0:
			assumed++
		default:
			measured++
		}
		if s.MappingFlip {
			flips++
		}
	}
	mode := ""
	switch {
	case ethFirst > measured+assumed:
		mode = model.MappingETH0Base1
	case measured > 0:
		mode = model.MappingBase0ETH1
	case assumed > 0:
		mode = model.MappingAssumeBase0
	}

	return model.VaultSummary{
		T0DatetimeUTC:    first.DatetimeUTC,
		T1DatetimeUTC:    last.DatetimeUTC,
		ValueUSDT0:       first.ValueTotalUSD,
		ValueUSDT1:       last.ValueTotalUSD,
		VaultIndexT1:     last.VaultIndex,
		HoldIndexT1:      last.HoldIndex,
		FullRangeIndexT1: last.FullRangeIndex,
		AmtETHT0:         first.AmtETH,
		AmtETHT1:         last.AmtETH,
		AmtBaseT0:        first.AmtBase,
		AmtBaseT1:        last.AmtBase,
		BaseSymbol:       first.BaseSymbol,
		MappingMode:      mode,
		MappingFlips:     flips,
		Samples:          len(samples),
	}, nil
}

package slippage

import "math"

// UniV2Fee is the UniswapV2 swap fee taken from the input amount.
const UniV2Fee = 0.003

// Pct is the slippage excluding fees: |spot - avg| / spot * 100 - fee * 100.
// ok is false when either price is non-finite or non-positive, or the result is non-finite.
func Pct(spot, avg, fee float64) (float64, bool) {
	if !positive(spot) || !positive(avg) {
		return 0, false
	}
	gross := math.Abs(spot-avg) / spot * 100
	net := gross - fee*100
	if math.IsNaN(net) || math.IsInf(net, 0) {
		return 0, false
	}
	return net, true
}

// CPMMOut is the constant-product output for amountIn with the fee taken from the input.
func CPMMOut(amountIn, reserveIn, reserveOut, fee float64) float64 {
	if !positive(amountIn) || !positive(reserveIn) || !positive(reserveOut) {
		return 0
	}
	effective := amountIn * (1 - fee)
	k := reserveIn * reserveOut
	out := reserveOut - k/(reserveIn+effective)
	return math.Max(0, out)
}

// RelativeChange is (post - pre) / pre * 100; NaN when pre is zero or either side is missing.
func RelativeChange(pre, post float64) float64 {
	if pre == 0 || math.IsNaN(pre) || math.IsNaN(post) || math.IsInf(pre, 0) || math.IsInf(post, 0) {
		return math.NaN()
	}
	return (post - pre) / pre * 100
}

// DownsampleIndices picks at most max evenly spaced indices out of n, always keeping the
// first and the last row.
func DownsampleIndices(n, max int) []int {
	if n <= 0 {
		return nil
	}
	if max <= 0 || n <= max {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	if max == 1 {
		return []int{0}
	}
	out := make([]int, max)
	step := float64(n-1) / float64(max-1)
	for i := range out {
		out[i] = int(float64(i) * step)
	}
	out[max-1] = n - 1
	return out
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

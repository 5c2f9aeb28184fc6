package model

import "strings"

const (
	VenueUniV2Pre  = "UniV2_pre"
	VenueUniV4Post = "UniV4_post"
)

// SlippageObservation is one simulated trade at one block.
type SlippageObservation struct {
	BlockNumber      uint64
	Timestamp        uint64
	DatetimeUTC      string
	Direction        string
	USDNotionalIn    float64
	AmountIn         float64
	AmountInUnit     string
	AmountOut        float64
	AmountOutUnit    string
	SpotPrice        float64
	SpotPriceUnit    string
	AvgExecPrice     float64
	AvgExecPriceUnit string
	SlippagePct      float64
	FeeRate          float64
	FeeUint24        uint32
	TickSpacing      int32
	Hooks            string
	GasEstimate      uint64
}

// SlippageSummary aggregates observations for one venue period, direction and size.
type SlippageSummary struct {
	VenuePeriod   string
	Direction     string
	USDNotionalIn float64
	Median        float64
	P90           float64
	N             int
}

// SlippageComparison pairs pre and post summaries for one direction and size.
type SlippageComparison struct {
	Direction       string
	USDNotionalIn   float64
	PreMedian       float64
	PostMedian      float64
	MedianChangePct float64
	PreP90          float64
	PostP90         float64
	P90ChangePct    float64
	PreN            int
	PostN           int
}

// Direction formats a trade direction label.
func Direction(in, out string) string {
	return in + "->" + out
}

// CanonicalDirection treats WETH and ETH as the same asset so pre and post labels line up.
func CanonicalDirection(direction string) string {
	parts := strings.Split(direction, "->")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if strings.EqualFold(part, "WETH") {
			part = "ETH"
		}
		parts[i] = part
	}
	return strings.Join(parts, "->")
}
